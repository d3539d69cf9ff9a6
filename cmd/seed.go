/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Idahel/js-project-api/internal/seed"
	"github.com/Idahel/js-project-api/internal/server"
	"github.com/Idahel/js-project-api/internal/storage"
)

var seedKey string

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset or export the thoughts collection",
}

var seedResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every thought and insert the seed dataset",
	Long: `Delete every thought and insert the seed dataset. Without --key the
dataset bundled with the binary is used; with --key it is read from the
configured object storage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSeeder(cmd.Context(), seedKey, func(s *seed.Seeder, key string) error {
			n, err := s.Reset(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d thoughts\n", n)
			return nil
		})
	},
}

var seedExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every thought to object storage in seed format",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedKey == "" {
			return errors.New("--key is required")
		}
		return withSeeder(cmd.Context(), seedKey, func(s *seed.Seeder, key string) error {
			n, err := s.Export(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d thoughts to %s\n", n, seedKey)
			return nil
		})
	},
}

// withSeeder opens the configured store for the duration of fn. An empty
// key falls back to SEED_OBJECT_KEY; object storage is opened only when a
// key is in play.
func withSeeder(ctx context.Context, key string, fn func(s *seed.Seeder, key string) error) error {
	cfg, logger := loadConfig()
	if key == "" {
		key = cfg.Seed.ObjectKey
	}

	backend, err := server.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = backend.Close(context.Background())
	}()

	var objects seed.ObjectStore
	if key != "" {
		s, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("open object storage: %w", err)
		}
		defer s.Close()
		objects = s
	}

	return fn(seed.NewSeeder(backend.Thoughts, objects, logger), key)
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedResetCmd)
	seedCmd.AddCommand(seedExportCmd)

	seedCmd.PersistentFlags().StringVar(&seedKey, "key", "", "object storage key of the seed file")
}
