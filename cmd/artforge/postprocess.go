package main

import (
	"fmt"

	"ArtForge/config"
	"ArtForge/internal/imaging"
	"ArtForge/scripts"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func compressCommand(a *app) *cobra.Command {
	var (
		folders      int
		prefix       string
		maxDimension uint
	)

	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Recompress the images of every shard folder in place as JPEG",
		Long: `Recompress the images of every shard folder in place as JPEG.
Files keep their names. Each run re-encodes again, so quality drops further every time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix == "" {
				collection, err := config.ResolveCollection(a.cfg)
				if err != nil {
					return err
				}
				prefix = collection.ShardPrefix
			}
			backdrop, err := imaging.ParseBackdrop(a.cfg.Backdrop)
			if err != nil {
				return err
			}

			report, err := scripts.CompressAll(a.cfg.OutputDir, scripts.CompressOptions{
				ShardPrefix:  prefix,
				Folders:      folders,
				Quality:      a.cfg.Quality,
				MaxDimension: maxDimension,
				Backdrop:     backdrop,
			}, a.log)

			fmt.Fprintf(cmd.OutOrStdout(), "Compressed %d files, saved %s, %d folders without images\n",
				len(report.Files)-len(report.Failed()), humanize.Bytes(uint64(max(report.Saved(), 0))), len(report.MissingFolders))
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&folders, "folders", 100, "Number of numbered shard folders to visit")
	flags.StringVar(&prefix, "prefix", "", "Shard folder prefix, defaults to the collection's")
	flags.IntVarP(&a.cfg.Quality, "quality", "q", a.cfg.Quality, "JPEG quality 1-100")
	flags.UintVar(&maxDimension, "max-dimension", 0, "Also downscale images to fit this box, 0 keeps size")
	flags.StringVar(&a.cfg.Backdrop, "backdrop", a.cfg.Backdrop, "Hex colour transparent pixels are flattened onto")

	return cmd
}

func flattenCommand(a *app) *cobra.Command {
	var (
		root   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Move files from nested folders into a single output folder",
		Long: `Move every file found in {root}/{dir}/{sub}/ into {root}/output.
Files with the same name overwrite each other, the last folder in name order wins.
Use --strict to stop at the first collision instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := scripts.Flatten(root, scripts.FlattenOptions{Strict: strict}, a.log)
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d files, %d overwritten\n", len(report.Moves), report.Overwrites())
			return err
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Directory whose nested folders are flattened")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of overwriting files with the same name")

	return cmd
}
