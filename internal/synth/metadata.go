package synth

import (
	"encoding/json"
	"fmt"
	"io"

	"ArtForge/config"
	"ArtForge/internal/imaging"
	"ArtForge/internal/model"
	"ArtForge/internal/shard"
)

// BuildMetadata derives the sidecar record for an artifact. Attributes follow
// category declaration order; image and files[0].uri are the same URL.
func BuildMetadata(c config.Collection, layout shard.Layout, id int, combo model.Combination) (model.MetadataRecord, error) {
	if len(combo) != len(c.Categories) {
		return model.MetadataRecord{}, fmt.Errorf("combination has %d layers, collection %s has %d categories",
			len(combo), c.Name, len(c.Categories))
	}

	imageURL := c.BaseURL + layout.ImageName(id)
	externalURL := c.ExternalURL
	if externalURL == "" {
		externalURL = c.BaseURL
	}

	attributes := make([]model.Attribute, len(combo))
	for i, opt := range combo {
		attributes[i] = model.Attribute{TraitType: c.Categories[i].TraitType, Value: opt.Label}
	}

	return model.MetadataRecord{
		Name:        fmt.Sprintf("%s%d", c.DisplayName, id),
		Description: c.Description,
		ExternalURL: externalURL,
		Image:       imageURL,
		Attributes:  attributes,
		Properties: model.Properties{
			Files:    []model.File{{URI: imageURL, Type: "image/png"}},
			Category: "image",
			Creators: []string{},
		},
		Compiler: c.Compiler,
	}, nil
}

// WriteMetadata stores the record as indented JSON at path.
func WriteMetadata(path string, record model.MetadataRecord) error {
	return imaging.WriteFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(record)
	})
}
