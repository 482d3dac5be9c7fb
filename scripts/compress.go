package scripts

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"ArtForge/internal/catalog"
	"ArtForge/internal/imaging"

	"github.com/dustin/go-humanize"
)

var ErrMissingImages = errors.New("no images folder")

type CompressOptions struct {
	// ShardPrefix names the numbered folders: {ShardPrefix}1 .. {ShardPrefix}{Folders}.
	ShardPrefix string
	Folders     int
	Quality     int
	// MaxDimension, when set, also scales images down to fit a square box.
	MaxDimension uint
	Backdrop     color.Color
}

// FileResult is the outcome of recompressing one file.
type FileResult struct {
	Path        string
	BytesBefore int64
	BytesAfter  int64
	Err         error
}

type CompressReport struct {
	Files          []FileResult
	MissingFolders []string
}

// Saved returns the total number of bytes removed by successful files.
func (r CompressReport) Saved() int64 {
	var saved int64
	for _, f := range r.Files {
		if f.Err == nil {
			saved += f.BytesBefore - f.BytesAfter
		}
	}
	return saved
}

func (r CompressReport) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// CompressAll recompresses the images folder of every numbered shard under
// baseDir. A shard without an images folder is logged and skipped. Files are
// overwritten in place with JPEG data under their original names, so running
// it again degrades quality further. The returned error joins every per-file
// failure; the report is complete either way.
func CompressAll(baseDir string, opts CompressOptions, log *slog.Logger) (CompressReport, error) {
	if log == nil {
		log = slog.Default()
	}

	var report CompressReport
	var errs []error
	for folderID := 1; folderID <= opts.Folders; folderID++ {
		folder := filepath.Join(baseDir, fmt.Sprintf("%s%d", opts.ShardPrefix, folderID))
		results, err := CompressFolder(folder, opts, log)
		if errors.Is(err, ErrMissingImages) {
			log.Warn("no 'images' folder found", "folder", folder)
			report.MissingFolders = append(report.MissingFolders, folder)
			continue
		}
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, results...)
		for _, r := range results {
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
	}

	log.Info("compression finished",
		"files", len(report.Files),
		"failed", len(report.Failed()),
		"missing_folders", len(report.MissingFolders),
		"saved", humanize.Bytes(uint64(max(report.Saved(), 0))))
	return report, errors.Join(errs...)
}

// CompressFolder recompresses every image directly inside folder/images.
func CompressFolder(folder string, opts CompressOptions, log *slog.Logger) ([]FileResult, error) {
	if log == nil {
		log = slog.Default()
	}

	imagesDir := filepath.Join(folder, "images")
	info, err := os.Stat(imagesDir)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, fmt.Errorf("%w in %s", ErrMissingImages, folder)
	}
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, err
	}

	var results []FileResult
	for _, entry := range entries {
		if entry.IsDir() || !catalog.IsImage(entry.Name()) {
			continue
		}
		path := filepath.Join(imagesDir, entry.Name())
		result := CompressImage(path, opts)
		if result.Err != nil {
			log.Error("compression failed", "path", path, "error", result.Err)
		} else {
			log.Info("compressed",
				"path", path,
				"before", humanize.Bytes(uint64(result.BytesBefore)),
				"after", humanize.Bytes(uint64(result.BytesAfter)))
		}
		results = append(results, result)
	}
	return results, nil
}

// CompressImage re-encodes path as an opaque JPEG over itself.
func CompressImage(path string, opts CompressOptions) FileResult {
	result := FileResult{Path: path}

	before, err := os.Stat(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.BytesBefore = before.Size()

	img, _, err := imaging.Open(path)
	if err != nil {
		result.Err = err
		return result
	}
	if opts.MaxDimension > 0 {
		img = imaging.Thumbnail(img, opts.MaxDimension)
	}

	backdrop := opts.Backdrop
	if backdrop == nil {
		backdrop = color.Black
	}
	if err := imaging.WriteJPEG(path, imaging.Flatten(img, backdrop), opts.Quality); err != nil {
		result.Err = err
		return result
	}

	after, err := os.Stat(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.BytesAfter = after.Size()
	return result
}
