// Package commands exposes every backend operation the editor front end can
// invoke under a stable name.
//
// Handlers take the front end's JSON arguments (camelCase keys) and return a
// JSON-encodable result. The registry is transport-agnostic: the daemon's HTTP
// API, the JSON-RPC socket, and the CLI all dispatch through Invoke.
package commands
