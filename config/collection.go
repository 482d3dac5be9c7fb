package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ArtForge/internal/catalog"

	"gopkg.in/yaml.v3"
)

var ErrUnknownCollection = errors.New("unknown collection")

// Category is one trait slot. Categories are composited in declaration order,
// so the first one is the background and sets the canvas size.
type Category struct {
	TraitType string `yaml:"trait_type"`
	Folder    string `yaml:"folder"`
}

// Collection describes how a set of artifacts is named, described and layered.
type Collection struct {
	Name        string     `yaml:"name"`
	FilePrefix  string     `yaml:"file_prefix"`
	ShardPrefix string     `yaml:"shard_prefix"`
	DisplayName string     `yaml:"display_name"`
	Description string     `yaml:"description"`
	ExternalURL string     `yaml:"external_url"`
	BaseURL     string     `yaml:"base_url"`
	Compiler    string     `yaml:"compiler"`
	Categories  []Category `yaml:"categories"`
}

var presets = map[string]Collection{
	"robusnipe": {
		Name:        "robusnipe",
		FilePrefix:  "robusnipe",
		ShardPrefix: "robusnipe-",
		DisplayName: "Robusnipe",
		Description: "Robusnipe nft collection is a set of 10,000 unique NFTs." +
			"Each NFT is a combination of a background, body, helmet, and goggles.",
		BaseURL:  "https://ipfs.arbornft.io/robusnipe/",
		Compiler: "NFTexport.io",
		Categories: []Category{
			{TraitType: "Background", Folder: "BG"},
			{TraitType: "body", Folder: "Body"},
			{TraitType: "helmet", Folder: "Helmet"},
			{TraitType: "goggles", Folder: "Goggles"},
		},
	},
	"fight4hope": {
		Name:        "fight4hope",
		FilePrefix:  "fight4hope",
		ShardPrefix: "fight4hope-",
		DisplayName: "Fight4Hope",
		Description: "Fight4Hope nft collection is a set of 10,000 unique NFTs." +
			"Each NFT is a combination of a background, body, outfit, eyes, and headwear.",
		BaseURL:  "https://ipfs.arbornft.io/fight4hope/",
		Compiler: "NFTexport.io",
		Categories: []Category{
			{TraitType: "Background", Folder: "Background"},
			{TraitType: "body", Folder: "Body"},
			{TraitType: "outfit", Folder: "Outfit"},
			{TraitType: "eyes", Folder: "Eyes"},
			{TraitType: "headwear", Folder: "Headwear"},
		},
	},
}

// Presets lists the names of the built-in collections.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a copy of a built-in collection.
func Preset(name string) (Collection, error) {
	c, ok := presets[name]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	c.Categories = append([]Category(nil), c.Categories...)
	return c, nil
}

// LoadCollection reads a collection definition from a YAML file.
func LoadCollection(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, err
	}
	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Collection{}, fmt.Errorf("parsing collection %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Collection{}, fmt.Errorf("collection %s: %w", path, err)
	}
	return c, nil
}

// ResolveCollection prefers an explicit definition file over a preset name.
// A configured BASE_URL replaces the collection's own.
func ResolveCollection(cfg *Config) (Collection, error) {
	var c Collection
	var err error
	if cfg.CollectionFile != "" {
		c, err = LoadCollection(cfg.CollectionFile)
	} else {
		c, err = Preset(cfg.Collection)
	}
	if err != nil {
		return Collection{}, err
	}
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return c, nil
}

func (c *Collection) Validate() error {
	if c.FilePrefix == "" {
		return errors.New("file_prefix is required")
	}
	if len(c.Categories) == 0 {
		return catalog.ErrNoCategories
	}
	for i, cat := range c.Categories {
		if cat.TraitType == "" || cat.Folder == "" {
			return fmt.Errorf("category %d needs trait_type and folder", i+1)
		}
	}
	if c.Name == "" {
		c.Name = c.FilePrefix
	}
	if c.ShardPrefix == "" {
		c.ShardPrefix = c.FilePrefix
	}
	if c.DisplayName == "" {
		c.DisplayName = c.FilePrefix
	}
	return nil
}

// Sources resolves category folders against layersDir for the catalog loader.
func (c Collection) Sources(layersDir string) []catalog.Source {
	sources := make([]catalog.Source, len(c.Categories))
	for i, cat := range c.Categories {
		folder := cat.Folder
		if !filepath.IsAbs(folder) {
			folder = filepath.Join(layersDir, folder)
		}
		sources[i] = catalog.Source{Name: cat.TraitType, Folder: folder}
	}
	return sources
}
