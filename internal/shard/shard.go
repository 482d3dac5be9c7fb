package shard

import (
	"fmt"
	"path/filepath"

	"ArtForge/internal/model"
)

// Size is the number of artifacts written to one shard folder.
const Size = 100

// For returns the shard of an artifact: ceil(id / Size).
func For(id int) int {
	if id < 1 {
		return 0
	}
	return (id-1)/Size + 1
}

// Count returns how many shards n artifacts occupy.
func Count(n int) int {
	return For(n)
}

// Assign numbers combinations 1..N in order and attaches each one's shard.
func Assign(combos []model.Combination) []model.Job {
	jobs := make([]model.Job, len(combos))
	for i, combo := range combos {
		id := i + 1
		jobs[i] = model.Job{ID: id, Shard: For(id), Combination: combo}
	}
	return jobs
}

// Layout maps artifact ids to their place on disk:
// {Root}/{ShardPrefix}{shard}/images/{FilePrefix}{id}.png and the matching
// metadata/ json. Thumbnails carry a _thumb suffix so every file name stays
// unique once the shards are flattened into one folder.
type Layout struct {
	Root        string
	ShardPrefix string
	FilePrefix  string
}

func (l Layout) ShardDir(shard int) string {
	return filepath.Join(l.Root, fmt.Sprintf("%s%d", l.ShardPrefix, shard))
}

func (l Layout) ImageName(id int) string {
	return fmt.Sprintf("%s%d.png", l.FilePrefix, id)
}

func (l Layout) MetadataName(id int) string {
	return fmt.Sprintf("%s%d.json", l.FilePrefix, id)
}

func (l Layout) ThumbName(id int) string {
	return fmt.Sprintf("%s%d_thumb.png", l.FilePrefix, id)
}

func (l Layout) ImagePath(id int) string {
	return filepath.Join(l.ShardDir(For(id)), "images", l.ImageName(id))
}

func (l Layout) MetadataPath(id int) string {
	return filepath.Join(l.ShardDir(For(id)), "metadata", l.MetadataName(id))
}

func (l Layout) ThumbPath(id int) string {
	return filepath.Join(l.ShardDir(For(id)), "thumbs", l.ThumbName(id))
}
