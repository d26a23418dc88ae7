package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// EventBackendLog is the event name used for log records forwarded to a Publisher.
const EventBackendLog = "backend-log"

// Publisher receives named events. The daemon's event hub satisfies it.
type Publisher interface {
	Publish(name string, payload any)
}

// LogEvent is the payload published for forwarded log records.
type LogEvent struct {
	Timestamp     time.Time         `json:"ts"`
	Level         string            `json:"level"`
	Message       string            `json:"msg"`
	Component     string            `json:"component,omitempty"`
	Command       string            `json:"command,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
}

// publishHandler forwards warning and error records to a Publisher while
// delegating formatting to the wrapped handler.
type publishHandler struct {
	next      slog.Handler
	publisher Publisher
	attrs     []slog.Attr
	groups    []string
}

func newPublishHandler(next slog.Handler, publisher Publisher) slog.Handler {
	if publisher == nil || next == nil {
		return next
	}
	return &publishHandler{next: next, publisher: publisher}
}

func (h *publishHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *publishHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		h.publisher.Publish(EventBackendLog, h.eventFromRecord(record))
	}
	return h.next.Handle(ctx, record.Clone())
}

func (h *publishHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefixed := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		prefixed = append(prefixed, h.prefixed(attr))
	}
	return &publishHandler{
		next:      h.next.WithAttrs(attrs),
		publisher: h.publisher,
		attrs:     append(append([]slog.Attr(nil), h.attrs...), prefixed...),
		groups:    h.groups,
	}
}

func (h *publishHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &publishHandler{
		next:      h.next.WithGroup(name),
		publisher: h.publisher,
		attrs:     h.attrs,
		groups:    append(append([]string(nil), h.groups...), name),
	}
}

func (h *publishHandler) prefixed(attr slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return attr
	}
	attr.Key = strings.Join(h.groups, ".") + "." + attr.Key
	return attr
}

func (h *publishHandler) eventFromRecord(record slog.Record) LogEvent {
	event := LogEvent{
		Timestamp: record.Time.UTC(),
		Level:     strings.ToLower(levelLabel(record.Level)),
		Message:   strings.TrimSpace(record.Message),
	}
	apply := func(attr slog.Attr) {
		for _, f := range appendField(nil, nil, attr) {
			value := renderValue(f.value, false)
			switch f.key {
			case FieldComponent:
				event.Component = value
			case FieldCommand:
				event.Command = value
			case FieldCorrelationID:
				event.CorrelationID = value
			default:
				if event.Fields == nil {
					event.Fields = make(map[string]string)
				}
				event.Fields[f.key] = value
			}
		}
	}
	for _, attr := range h.attrs {
		apply(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		apply(h.prefixed(attr))
		return true
	})
	return event
}

func (e LogEvent) String() string {
	return fmt.Sprintf("%s %s", e.Level, e.Message)
}
