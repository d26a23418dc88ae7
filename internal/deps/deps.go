package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 2 * time.Second

// Requirement names a host tool mangatl shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to Command to read a version line.
	VersionArgs []string
}

// Status is the outcome of probing one Requirement.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// HostRequirements lists the tools behind font listing and the zenity
// picker. fc-list is always optional because the font chain falls back to a
// file scan; zenity is required only when dialogs.mode selects it.
func HostRequirements(dialogMode string) []Requirement {
	return []Requirement{
		{
			Name:        "fontconfig",
			Command:     "fc-list",
			Description: "system font family enumeration",
			Optional:    true,
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "zenity",
			Command:     "zenity",
			Description: "native file pickers",
			Optional:    dialogMode != "zenity",
			VersionArgs: []string{"--version"},
		},
	}
}

// CheckBinaries resolves every requirement on PATH and reads its version
// line when VersionArgs are set. A tool that resolves but fails the version
// probe is still reported available.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

func check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Available = true
	if len(req.VersionArgs) > 0 {
		status.Version = probeVersion(path, req.VersionArgs)
	}
	return status
}

// probeVersion returns the first non-empty output line, or "" when the tool
// fails or prints nothing.
func probeVersion(path string, args []string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

// Missing returns the names of required tools that are unavailable.
func Missing(statuses []Status) []string {
	var out []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s.Name)
		}
	}
	return out
}
