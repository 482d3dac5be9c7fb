package synth

import (
	"fmt"
	"image"
	"image/color"

	"ArtForge/config"
	"ArtForge/internal/imaging"
	"ArtForge/internal/model"
	"ArtForge/internal/shard"
)

// Synthesizer turns a job into an image file and a metadata file.
type Synthesizer struct {
	collection config.Collection
	layout     shard.Layout
	backdrop   color.Color
	thumbSize  uint
}

type Options struct {
	Backdrop  color.Color
	ThumbSize uint
}

func New(c config.Collection, outputDir string, opts Options) *Synthesizer {
	backdrop := opts.Backdrop
	if backdrop == nil {
		backdrop = color.Black
	}
	return &Synthesizer{
		collection: c,
		layout:     LayoutFor(c, outputDir),
		backdrop:   backdrop,
		thumbSize:  opts.ThumbSize,
	}
}

// LayoutFor returns where artifacts of c are written under outputDir.
func LayoutFor(c config.Collection, outputDir string) shard.Layout {
	return shard.Layout{Root: outputDir, ShardPrefix: c.ShardPrefix, FilePrefix: c.FilePrefix}
}

func (s *Synthesizer) Layout() shard.Layout {
	return s.layout
}

// Render composites the combination's layers in z-order and flattens the
// result against the backdrop. Each layer file is closed as soon as it is
// decoded, including when a later layer fails to open.
func (s *Synthesizer) Render(combo model.Combination) (*image.NRGBA, error) {
	layers := make([]image.Image, 0, len(combo))
	for _, opt := range combo {
		img, _, err := imaging.Open(opt.Path)
		if err != nil {
			return nil, fmt.Errorf("opening layer %s: %w", opt.Label, err)
		}
		layers = append(layers, img)
	}

	canvas, err := imaging.Composite(layers)
	if err != nil {
		return nil, err
	}
	return imaging.Flatten(canvas, s.backdrop), nil
}

// Synthesize writes the image, optional thumbnail and metadata for job.
func (s *Synthesizer) Synthesize(job model.Job) (model.ArtifactRecord, error) {
	record, err := BuildMetadata(s.collection, s.layout, job.ID, job.Combination)
	if err != nil {
		return model.ArtifactRecord{}, err
	}

	img, err := s.Render(job.Combination)
	if err != nil {
		return model.ArtifactRecord{}, fmt.Errorf("artifact %d: %w", job.ID, err)
	}

	imagePath := s.layout.ImagePath(job.ID)
	if err := imaging.WritePNG(imagePath, img); err != nil {
		return model.ArtifactRecord{}, fmt.Errorf("artifact %d: %w", job.ID, err)
	}

	if s.thumbSize > 0 {
		thumb := imaging.Thumbnail(img, s.thumbSize)
		if err := imaging.WritePNG(s.layout.ThumbPath(job.ID), thumb); err != nil {
			return model.ArtifactRecord{}, fmt.Errorf("artifact %d thumbnail: %w", job.ID, err)
		}
	}

	metadataPath := s.layout.MetadataPath(job.ID)
	if err := WriteMetadata(metadataPath, record); err != nil {
		return model.ArtifactRecord{}, fmt.Errorf("artifact %d: %w", job.ID, err)
	}

	return model.ArtifactRecord{
		ArtifactID:   job.ID,
		ShardID:      job.Shard,
		DNA:          job.Combination.DNA(),
		ImagePath:    imagePath,
		MetadataPath: metadataPath,
		TraitTypes:   traitTypes(s.collection),
		Traits:       job.Combination.Labels(),
	}, nil
}

func traitTypes(c config.Collection) []string {
	types := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		types[i] = cat.TraitType
	}
	return types
}
