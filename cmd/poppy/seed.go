package main

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectoinject"
	"github.com/spf13/cobra"

	catalogrepo "github.com/Ramsey-B/poppy/internal/repositories/catalog"
	"github.com/Ramsey-B/poppy/internal/services/catalog"
	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/seed"
)

func seedCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the seed TSV into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			rt, err := newRuntime(ctx, cmd, "poppy-seed")
			if err != nil {
				return err
			}
			defer rt.Close()

			db, err := database.Open(rt.cfg.Database(), rt.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, err = rt.provide(ctx, db)
			if err != nil {
				return err
			}

			seeder, err := newSeeder(ctx, path)
			if err != nil {
				return err
			}

			res, err := seeder.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seed completed. Inserted: %d, errors: %d, skipped: %d\n", res.Inserted, res.Errors, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "TSV file to load (defaults to SEED_TSV)")
	return cmd
}

// newSeeder builds the seeder from the command's container. path overrides
// SEED_TSV when set.
func newSeeder(ctx context.Context, path string) (*seed.Seeder, error) {
	ctx, cfg, logger, err := shared(ctx)
	if err != nil {
		return nil, err
	}

	_, db, err := ectoinject.GetContext[database.DB](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database: %w", err)
	}

	seedCfg := cfg.Seed()
	if path != "" {
		seedCfg.Path = path
	}

	repo := catalogrepo.NewRepository(db, logger)
	return seed.NewSeeder(seedCfg, seed.OS(), db, repo, catalog.NewService(repo, logger), logger), nil
}
