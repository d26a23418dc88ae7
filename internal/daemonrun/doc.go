// Package daemonrun wires configuration, logging, the command registry, and
// both transports into a running daemon process.
package daemonrun
