// Package api defines the transport-neutral payloads the daemon exchanges
// with its HTTP and JSON-RPC clients.
//
// Keep these types free of daemon internals so the CLI, the HTTP handlers,
// and the IPC layer can share them without import cycles.
package api
