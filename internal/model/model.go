package model

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// LayerOption is one interchangeable image inside a category folder.
type LayerOption struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// LayerCategory is one visual dimension of an artifact. Options keep the order
// in which the loader found them.
type LayerCategory struct {
	Name    string        `json:"name"`
	Options []LayerOption `json:"options"`
}

// Combination holds exactly one option per category, in category declaration
// order, which is also the z-order used when compositing.
type Combination []LayerOption

// Labels returns the trait labels of the combination in category order.
func (c Combination) Labels() []string {
	labels := make([]string, len(c))
	for i, opt := range c {
		labels[i] = opt.Label
	}
	return labels
}

// DNA is a content fingerprint of the combination. Two combinations share a DNA
// only when they select the same asset in every slot.
func (c Combination) DNA() string {
	h := blake3.New()
	for _, opt := range c {
		h.Write([]byte(opt.Path))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func (c Combination) String() string {
	return strings.Join(c.Labels(), "/")
}

// Job is a combination with its output coordinates. IDs run 1..N in
// assignment order and the shard is derived from the ID only.
type Job struct {
	ID          int
	Shard       int
	Combination Combination
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type File struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

type Properties struct {
	Files    []File   `json:"files"`
	Category string   `json:"category"`
	Creators []string `json:"creators"`
}

// MetadataRecord is the JSON sidecar written next to every artifact image.
type MetadataRecord struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ExternalURL string      `json:"external_url"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
	Properties  Properties  `json:"properties"`
	Compiler    string      `json:"compiler"`
}

// ArtifactRecord is what the registry stores about a written artifact.
type ArtifactRecord struct {
	RunID        string   `json:"run_id"`
	ArtifactID   int      `json:"artifact_id"`
	ShardID      int      `json:"shard_id"`
	DNA          string   `json:"dna"`
	ImagePath    string   `json:"image_path"`
	MetadataPath string   `json:"metadata_path"`
	TraitTypes   []string `json:"trait_types"`
	Traits       []string `json:"traits"`
}

// Run describes one generation pass.
type Run struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Seed       uint64    `json:"seed"`
	Requested  int       `json:"requested"`
	CreatedAt  time.Time `json:"created_at"`
}
