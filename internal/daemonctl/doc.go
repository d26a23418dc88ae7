// Package daemonctl launches, probes, and stops the background daemon from
// the CLI side of the JSON-RPC socket.
package daemonctl
