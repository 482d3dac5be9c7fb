package scripts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// OutputDir is the folder the flattener collects files into.
const OutputDir = "output"

var ErrCollision = errors.New("destination already exists")

type FlattenOptions struct {
	// Strict refuses to overwrite a file already present in the output
	// folder. By default the later move wins.
	Strict bool
}

type Move struct {
	From      string
	To        string
	Overwrote bool
}

type FlattenReport struct {
	Moves []Move
}

func (r FlattenReport) Overwrites() int {
	n := 0
	for _, m := range r.Moves {
		if m.Overwrote {
			n++
		}
	}
	return n
}

// Flatten moves every file found two levels below root ({root}/{dir}/{sub}/file)
// into {root}/output, dropping the nested path. Directories are walked in name
// order, so on a basename collision the file from the last directory in that
// order ends up in output. Files directly inside the top-level directories
// and anything deeper than one nested level are left in place.
func Flatten(root string, opts FlattenOptions, log *slog.Logger) (FlattenReport, error) {
	if log == nil {
		log = slog.Default()
	}

	var report FlattenReport
	outDir := filepath.Join(root, OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, err
	}

	dirs, err := os.ReadDir(root)
	if err != nil {
		return report, err
	}

	for _, dir := range dirs {
		if dir.Name() == OutputDir || !dir.IsDir() {
			continue
		}
		subdirs, err := os.ReadDir(filepath.Join(root, dir.Name()))
		if err != nil {
			return report, err
		}
		for _, sub := range subdirs {
			if !sub.IsDir() {
				continue
			}
			subPath := filepath.Join(root, dir.Name(), sub.Name())
			log.Info("flattening", "folder", subPath)
			if err := flattenDir(subPath, outDir, opts, log, &report); err != nil {
				return report, err
			}
		}
	}

	log.Info("flatten finished", "moved", len(report.Moves), "overwritten", report.Overwrites())
	return report, nil
}

func flattenDir(src, outDir string, opts FlattenOptions, log *slog.Logger, report *FlattenReport) error {
	files, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, f := range files {
		from := filepath.Join(src, f.Name())
		if f.IsDir() {
			log.Debug("skipping nested directory", "path", from)
			continue
		}
		to := filepath.Join(outDir, f.Name())

		overwrote := false
		if _, err := os.Lstat(to); err == nil {
			if opts.Strict {
				return fmt.Errorf("%w: %s (from %s)", ErrCollision, to, from)
			}
			overwrote = true
			log.Warn("overwriting file in output", "path", to, "source", from)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := os.Rename(from, to); err != nil {
			return err
		}
		report.Moves = append(report.Moves, Move{From: from, To: to, Overwrote: overwrote})
	}
	return nil
}
