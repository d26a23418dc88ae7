package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mangatl/internal/api"
	"mangatl/internal/ipc"
)

const eventPollMillis = 15000

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var name string
	var since uint64
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print buffered daemon events as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				cursor := since
				for {
					resp, err := client.Events(ipc.EventsRequest{
						Since:      cursor,
						Limit:      limit,
						Name:       name,
						Wait:       follow,
						WaitMillis: eventPollMillis,
					})
					if err != nil {
						return err
					}
					if err := printEvents(cmd.OutOrStdout(), resp.Events); err != nil {
						return err
					}
					if resp.Next > cursor {
						cursor = resp.Next
					}
					if !follow {
						return nil
					}
					if err := cmd.Context().Err(); err != nil {
						return err
					}
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep waiting for new events")
	cmd.Flags().StringVar(&name, "name", "", "Only print events with this name (e.g. llm-stream)")
	cmd.Flags().Uint64Var(&since, "since", 0, "Print events after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 200, "Maximum events per fetch")
	return cmd
}

func printEvents(w io.Writer, list []api.Event) error {
	enc := json.NewEncoder(w)
	for _, evt := range list {
		if err := enc.Encode(evt); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}
	return nil
}
