package api

import (
	"encoding/json"
	"time"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// CommandResponse is the body of POST /api/commands/:name. Exactly one of
// Data and Error is meaningful.
type CommandResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// CommandList enumerates the registered command names.
type CommandList struct {
	Commands []string `json:"commands"`
}

// DependencyStatus captures availability of an external helper binary.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus describes the running daemon.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	StartedAt    string             `json:"startedAt,omitempty"`
	APIAddress   string             `json:"apiAddress,omitempty"`
	LockFilePath string             `json:"lockFilePath"`
	LogPath      string             `json:"logPath,omitempty"`
	Commands     int                `json:"commands"`
	LastEventSeq uint64             `json:"lastEventSeq"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// Event is one entry from the daemon's event buffer.
type Event struct {
	Sequence  uint64          `json:"seq"`
	Timestamp string          `json:"ts"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
}

// EventsResponse is a page of events plus the cursor for the next fetch.
type EventsResponse struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
}

// FormatTime renders t in the API timestamp format, or "" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
