/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Idahel/js-project-api/internal/events"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect thought lifecycle events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print thought events as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig()
		ctx := cmd.Context()

		bus, err := events.Open(ctx, cfg.Events)
		if err != nil {
			return err
		}
		defer bus.Close()

		logger.Info("tailing thought events", "backend", cfg.Events.Backend, "channel", bus.Channel())
		enc := json.NewEncoder(cmd.OutOrStdout())
		err = bus.Subscribe(ctx, func(_ context.Context, ev events.ThoughtEvent) error {
			return enc.Encode(ev)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
