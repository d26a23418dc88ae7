package dialog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const zenityCancelled = 1

// Zenity shows GTK file choosers through the zenity binary.
type Zenity struct {
	// Binary overrides the zenity executable.
	Binary string
}

func (z Zenity) PickFolder(ctx context.Context, p Prompt) (string, error) {
	if path := strings.TrimSpace(p.Path); path != "" {
		return path, nil
	}
	out, err := z.run(ctx, p, "--directory")
	return strings.TrimSpace(out), err
}

func (z Zenity) PickFiles(ctx context.Context, p Prompt) ([]string, error) {
	if selected := preset(p); len(selected) > 0 {
		return selected, nil
	}
	out, err := z.run(ctx, p, "--multiple", "--separator=\n")
	if err != nil {
		return nil, err
	}
	var paths []string
	for line := range strings.Lines(out) {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

func (z Zenity) PickOpenFile(ctx context.Context, p Prompt) (string, error) {
	if path := strings.TrimSpace(p.Path); path != "" {
		return path, nil
	}
	out, err := z.run(ctx, p)
	return strings.TrimSpace(out), err
}

func (z Zenity) PickSaveFile(ctx context.Context, p Prompt) (string, error) {
	if path := strings.TrimSpace(p.Path); path != "" {
		return path, nil
	}
	args := []string{"--save", "--confirm-overwrite"}
	if p.DefaultName != "" {
		args = append(args, "--filename="+p.DefaultName)
	}
	out, err := z.run(ctx, p, args...)
	return strings.TrimSpace(out), err
}

// run invokes zenity and returns its stdout. Exit status 1 (cancel or window
// closed) yields an empty string and no error.
func (z Zenity) run(ctx context.Context, p Prompt, extra ...string) (string, error) {
	binary := z.Binary
	if binary == "" {
		binary = "zenity"
	}
	args := []string{"--file-selection"}
	if p.Title != "" {
		args = append(args, "--title="+p.Title)
	}
	args = append(args, extra...)
	for _, f := range p.Filters {
		args = append(args, "--file-filter="+filterArg(f))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == zenityCancelled {
			return "", nil
		}
		return "", fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func filterArg(f Filter) string {
	patterns := strings.Join(f.Patterns, " ")
	if f.Name == "" {
		return patterns
	}
	return f.Name + " | " + patterns
}
