package api

import (
	"testing"
	"time"

	"mangatl/internal/deps"
	"mangatl/internal/events"
)

func TestFromEvents(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := FromEvents([]events.Event{
		{Sequence: 3, Timestamp: ts, Name: "llm-stream", Payload: map[string]any{"id": "a", "done": true}},
		{Sequence: 4, Timestamp: ts, Name: "bad", Payload: func() {}},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if string(got[0].Payload) != `{"done":true,"id":"a"}` {
		t.Fatalf("unexpected payload %s", got[0].Payload)
	}
	if got[0].Timestamp != "2025-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected timestamp %q", got[0].Timestamp)
	}
	if string(got[1].Payload) != "null" {
		t.Fatalf("expected null payload for unencodable value, got %s", got[1].Payload)
	}
}

func TestFromDependencies(t *testing.T) {
	got := FromDependencies([]deps.Status{{Name: "zenity", Command: "zenity", Optional: true, Detail: "missing"}})
	if len(got) != 1 || got[0].Name != "zenity" || !got[0].Optional || got[0].Detail != "missing" {
		t.Fatalf("unexpected conversion %+v", got)
	}
	if FromDependencies(nil) == nil {
		t.Fatal("expected empty slice, not nil")
	}
}

func TestFormatTimeZero(t *testing.T) {
	if FormatTime(time.Time{}) != "" {
		t.Fatal("expected empty string for zero time")
	}
}
