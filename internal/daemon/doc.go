// Package daemon coordinates the long-running mangatl process.
//
// It wires configuration, the command registry, and the event hub into a
// single lifecycle with flock-based locking to prevent multiple instances,
// and serves the HTTP API the editor front end talks to.
//
// Keep orchestration logic here: command behaviour lives in the commands
// package and its collaborators while the daemon focuses on startup,
// shutdown, and transport.
package daemon
