// Package logs tails the daemon log file for `mangatl logs`.
//
// A negative offset selects the last N lines; a non-negative offset reads
// forward from that byte position. Follow mode polls until new lines arrive
// or the wait elapses.
package logs
