// Package dialog obtains file and folder selections for commands that, in a
// desktop shell, would open a native picker.
package dialog

import (
	"context"
	"strings"

	"mangatl/internal/config"
)

// Filter restricts selectable files by glob pattern.
type Filter struct {
	Name     string
	Patterns []string
}

// Prompt describes one selection. Path and Paths carry a selection already
// made by the caller; pickers return them unchanged when set.
type Prompt struct {
	Title       string
	Path        string
	Paths       []string
	DefaultName string
	Filters     []Filter
}

// Picker obtains selections. An empty result with a nil error means the user
// cancelled.
type Picker interface {
	PickFolder(ctx context.Context, p Prompt) (string, error)
	PickFiles(ctx context.Context, p Prompt) ([]string, error)
	PickOpenFile(ctx context.Context, p Prompt) (string, error)
	PickSaveFile(ctx context.Context, p Prompt) (string, error)
}

// New returns the picker for mode ("request" or "zenity").
func New(mode string) Picker {
	if strings.EqualFold(strings.TrimSpace(mode), config.DialogModeZenity) {
		return Zenity{}
	}
	return Request{}
}

// Request returns only what the caller supplied in the prompt.
type Request struct{}

func (Request) PickFolder(_ context.Context, p Prompt) (string, error) {
	return strings.TrimSpace(p.Path), nil
}

func (Request) PickFiles(_ context.Context, p Prompt) ([]string, error) {
	return preset(p), nil
}

func (Request) PickOpenFile(_ context.Context, p Prompt) (string, error) {
	return strings.TrimSpace(p.Path), nil
}

func (Request) PickSaveFile(_ context.Context, p Prompt) (string, error) {
	return strings.TrimSpace(p.Path), nil
}

func preset(p Prompt) []string {
	var out []string
	for _, path := range p.Paths {
		if path = strings.TrimSpace(path); path != "" {
			out = append(out, path)
		}
	}
	if len(out) == 0 {
		if path := strings.TrimSpace(p.Path); path != "" {
			out = append(out, path)
		}
	}
	return out
}
