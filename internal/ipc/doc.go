// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. Command
// failures travel inside the response body with their HTTP-equivalent status
// so the client can rebuild a classified error.
package ipc
