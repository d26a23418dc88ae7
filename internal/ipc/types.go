package ipc

import (
	"encoding/json"

	"mangatl/internal/api"
)

// ServiceName is the JSON-RPC receiver name.
const ServiceName = "Mangatl"

// InvokeRequest runs one command.
type InvokeRequest struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// InvokeResponse carries either the command result or its failure.
type InvokeResponse struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Status int             `json:"status"`
}

// StatusRequest asks for daemon status.
type StatusRequest struct{}

// StatusResponse mirrors api.DaemonStatus.
type StatusResponse = api.DaemonStatus

// CommandsRequest lists command names.
type CommandsRequest struct{}

// CommandsResponse mirrors api.CommandList.
type CommandsResponse = api.CommandList

// EventsRequest fetches buffered events after Since. With Wait set the call
// blocks up to WaitMillis for the first new event.
type EventsRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	Name       string `json:"name,omitempty"`
	Wait       bool   `json:"wait"`
	WaitMillis int    `json:"waitMillis"`
}

// EventsResponse mirrors api.EventsResponse.
type EventsResponse = api.EventsResponse

// ShutdownRequest asks the daemon process to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Acknowledged bool `json:"acknowledged"`
}
