// Package main hosts the mangatl CLI entrypoint and command graph.
//
// The Cobra command tree drives the daemon over its JSON-RPC socket
// (start, stop, status, call, events) and runs the project archive codec
// and font listing locally so scripts can work without a daemon.
package main
