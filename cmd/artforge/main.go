package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"ArtForge/config"

	"github.com/spf13/cobra"
)

type app struct {
	cfg   *config.Config
	log   *slog.Logger
	debug bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = rootCommand(&app{cfg: cfg}).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func rootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "artforge",
		Short:        "Generate layered NFT collections",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.debug, "debug", "d", false, "Enable debug output")
	flags.StringVar(&a.cfg.Collection, "collection", a.cfg.Collection, fmt.Sprintf("Built-in collection %v", config.Presets()))
	flags.StringVar(&a.cfg.CollectionFile, "collection-file", a.cfg.CollectionFile, "YAML collection definition, overrides --collection")
	flags.StringVar(&a.cfg.LayersDir, "layers", a.cfg.LayersDir, "Directory holding the layer folders")
	flags.StringVarP(&a.cfg.OutputDir, "output", "o", a.cfg.OutputDir, "Directory the shard folders are written to")
	flags.StringVar(&a.cfg.BaseURL, "base-url", a.cfg.BaseURL, "Base URL for image links, overrides the collection's")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if a.debug {
			level = slog.LevelDebug
		}
		a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	rootCmd.AddCommand(
		generateCommand(a),
		compressCommand(a),
		flattenCommand(a),
		serveCommand(a),
	)
	return rootCmd
}
