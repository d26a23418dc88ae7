package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mangatl/internal/ipc"
)

func newCallCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <command> [json-args|-]",
		Short: "Invoke a daemon command and print its JSON result",
		Long: "Invoke a daemon command by name. Arguments are a JSON object using the " +
			"editor's camelCase keys; pass - to read them from stdin.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := callArgs(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				data, err := client.Invoke(args[0], raw)
				if err != nil {
					var cmdErr *ipc.CommandError
					if errors.As(err, &cmdErr) {
						return fmt.Errorf("%s failed (status %d): %s", args[0], cmdErr.Status, cmdErr.Message)
					}
					return err
				}
				var out bytes.Buffer
				if err := json.Indent(&out, data, "", "  "); err != nil {
					return fmt.Errorf("format result: %w", err)
				}
				out.WriteByte('\n')
				_, err = cmd.OutOrStdout().Write(out.Bytes())
				return err
			})
		},
	}
	return cmd
}

func callArgs(stdin io.Reader, rest []string) (json.RawMessage, error) {
	if len(rest) == 0 {
		return nil, nil
	}
	text := rest[0]
	if text == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("arguments are not valid JSON")
	}
	return json.RawMessage(text), nil
}

func newCommandsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List the daemon's command names",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				list, err := client.Commands()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, list)
				}
				for _, name := range list.Commands {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON")
	return cmd
}
