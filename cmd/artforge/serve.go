package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ArtForge/config"
	"ArtForge/internal/handler"
	"ArtForge/internal/repository/postgres"
	"ArtForge/internal/router"

	"github.com/spf13/cobra"
)

func serveCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a generated collection for preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			collection, err := config.ResolveCollection(cfg)
			if err != nil {
				return err
			}

			var finder handler.ArtifactFinder
			if cfg.DatabaseEnabled() {
				db, err := config.NewConnection(cfg)
				if err != nil {
					return err
				}
				defer func() {
					if err := db.Close(); err != nil {
						a.log.Error("closing the database", "error", err)
					}
				}()
				finder = postgres.NewArtifactRepository(db)
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router.NewRouter(collection, cfg.OutputDir, finder, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				serveErr <- srv.ListenAndServe()
			}()
			a.log.Info("server started", "addr", srv.Addr, "output", cfg.OutputDir)

			select {
			case err := <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.log.Error("shutting down the server", "error", err)
				return err
			}
			a.log.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&a.cfg.Port, "port", "p", a.cfg.Port, "Port to listen on")

	return cmd
}
