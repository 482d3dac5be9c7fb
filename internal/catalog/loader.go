package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ArtForge/internal/model"
)

var (
	ErrNoAssets     = errors.New("no assets found")
	ErrNoCategories = errors.New("no layer categories configured")
)

// Source names one category and the folder its options live in.
type Source struct {
	Name   string
	Folder string
}

// IsImage reports whether name has one of the layer image extensions.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// LoadFolder returns every image file directly inside folder as a layer option
// labelled with its file name minus the extension. Subfolders are ignored.
func LoadFolder(folder string) ([]model.LayerOption, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading layer folder %s: %w", folder, err)
	}

	var options []model.LayerOption
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		name := entry.Name()
		options = append(options, model.LayerOption{
			Path:  filepath.Join(folder, name),
			Label: strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}

	if len(options) == 0 {
		return nil, fmt.Errorf("%w in folder: %s", ErrNoAssets, folder)
	}
	return options, nil
}

// Load reads each source in declaration order. It fails on the first empty
// folder since no combination can be formed without it.
func Load(sources []Source) ([]model.LayerCategory, error) {
	if len(sources) == 0 {
		return nil, ErrNoCategories
	}

	categories := make([]model.LayerCategory, 0, len(sources))
	for _, src := range sources {
		options, err := LoadFolder(src.Folder)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", src.Name, err)
		}
		categories = append(categories, model.LayerCategory{Name: src.Name, Options: options})
	}
	return categories, nil
}
