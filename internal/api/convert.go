package api

import (
	"encoding/json"

	"mangatl/internal/deps"
	"mangatl/internal/events"
)

// FromDependencies converts dependency checks to their wire form.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Version:     s.Version,
			Detail:      s.Detail,
		})
	}
	return out
}

// FromEvents converts hub events to their wire form. Events whose payload
// cannot be encoded carry a null payload.
func FromEvents(list []events.Event) []Event {
	out := make([]Event, 0, len(list))
	for _, evt := range list {
		payload, err := evt.MarshalPayload()
		if err != nil {
			payload = json.RawMessage("null")
		}
		out = append(out, Event{
			Sequence:  evt.Sequence,
			Timestamp: FormatTime(evt.Timestamp),
			Name:      evt.Name,
			Payload:   payload,
		})
	}
	return out
}
