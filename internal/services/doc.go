// Package services defines shared utilities consumed by the command handlers
// and the remote service proxies.
//
// Key responsibilities:
//   - Context helpers that stamp command names and correlation identifiers for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures so
//     transports can translate them into status codes.
//
// Use these helpers when wiring new commands so error handling and
// observability stay uniform across the backend.
package services
