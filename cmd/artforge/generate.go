package main

import (
	"fmt"

	"ArtForge/config"
	"ArtForge/internal/imaging"
	"ArtForge/internal/repository/postgres"
	"ArtForge/internal/service"
	"ArtForge/internal/synth"

	"github.com/spf13/cobra"
)

func generateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Composite layer images into a collection with metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			collection, err := config.ResolveCollection(cfg)
			if err != nil {
				return err
			}
			backdrop, err := imaging.ParseBackdrop(cfg.Backdrop)
			if err != nil {
				return err
			}

			var recorder service.Recorder
			if cfg.DatabaseEnabled() {
				db, err := config.NewConnection(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				repo := postgres.NewArtifactRepository(db)
				if err := repo.EnsureSchema(cmd.Context()); err != nil {
					return fmt.Errorf("preparing registry schema: %w", err)
				}
				recorder = repo
			}

			s := synth.New(collection, cfg.OutputDir, synth.Options{
				Backdrop:  backdrop,
				ThumbSize: cfg.ThumbSize,
			})
			generator := service.NewGeneratorService(collection, cfg.LayersDir, s, recorder, a.log, service.Options{
				Seed:            cfg.Seed,
				Workers:         cfg.Workers,
				ContinueOnError: cfg.ContinueOnError,
			})

			summary, err := generator.Generate(cmd.Context(), cfg.Count)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s: generated %d of %d artifacts in %d folders (seed %d)\n",
				summary.RunID, summary.Generated, summary.Requested, summary.Shards, summary.Seed)
			for _, f := range summary.Failures {
				fmt.Fprintf(cmd.OutOrStdout(), "  artifact %d failed: %v\n", f.ArtifactID, f.Err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&a.cfg.Count, "count", "n", a.cfg.Count, "Number of artifacts to generate")
	flags.Uint64Var(&a.cfg.Seed, "seed", a.cfg.Seed, "Shuffle seed, 0 picks a random one")
	flags.IntVarP(&a.cfg.Workers, "workers", "w", a.cfg.Workers, "Artifacts synthesized in parallel")
	flags.BoolVar(&a.cfg.ContinueOnError, "continue-on-error", a.cfg.ContinueOnError, "Skip artifacts that fail instead of aborting")
	flags.UintVar(&a.cfg.ThumbSize, "thumb-size", a.cfg.ThumbSize, "Also write thumbnails fitting this box, 0 disables")
	flags.StringVar(&a.cfg.Backdrop, "backdrop", a.cfg.Backdrop, "Hex colour transparent pixels are flattened onto")

	return cmd
}
