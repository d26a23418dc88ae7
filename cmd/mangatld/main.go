package main

import (
	"context"
	"fmt"
	"os"

	"mangatl/internal/config"
	"mangatl/internal/daemonrun"
)

func main() {
	opts := optionsFromEnv(os.Getenv)

	cfg, _, _, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, opts.Run); err != nil {
		fmt.Fprintf(os.Stderr, "mangatld: %v\n", err)
		os.Exit(1)
	}
}
