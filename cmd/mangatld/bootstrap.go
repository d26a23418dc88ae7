package main

import (
	"strings"

	"mangatl/internal/daemonrun"
)

// launchOptions are read from the environment because the editor shell
// spawns mangatld as a sidecar without arguments.
type launchOptions struct {
	ConfigPath string
	Run        daemonrun.Options
}

func optionsFromEnv(getenv func(string) string) launchOptions {
	return launchOptions{
		ConfigPath: strings.TrimSpace(getenv("MANGATL_CONFIG")),
		Run: daemonrun.Options{
			LogLevel:    strings.TrimSpace(getenv("MANGATL_LOG_LEVEL")),
			Development: isTruthy(getenv("MANGATL_DEV")),
		},
	}
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
