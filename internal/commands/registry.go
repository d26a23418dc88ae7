package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"mangatl/internal/logging"
	"mangatl/internal/services"
)

// Handler executes one command.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registry maps command names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logging.NewComponentLogger(logger, "commands"),
	}
}

// Register binds name to h, replacing any previous handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Names lists registered commands in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Invoke runs the named command with args.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "commands", "invoke", fmt.Sprintf("unknown command %q", name), nil)
	}

	ctx = services.WithCommand(ctx, name)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()
	result, err := handler(ctx, args)
	elapsed := time.Since(started)
	if err != nil {
		logging.WarnWithContext(logger, "command failed", "command_failed",
			logging.Error(err),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldImpact, "the front end receives the error text"),
		)
		return nil, err
	}
	logger.Debug("command finished", logging.Duration("elapsed", elapsed))
	return result, nil
}

// decodeArgs unmarshals args into dst. Empty or null args leave dst at its
// zero value.
func decodeArgs(args json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return services.Wrap(services.ErrValidation, "commands", "decode arguments", "", err)
	}
	return nil
}

// typed adapts a handler taking a decoded argument struct.
func typed[A any](fn func(ctx context.Context, args A) (any, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return fn(ctx, args)
	}
}
