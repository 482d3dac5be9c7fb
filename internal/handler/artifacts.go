package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ArtForge/internal/model"
	"ArtForge/internal/repository/postgres"
	"ArtForge/internal/shard"

	"github.com/gorilla/mux"
)

// ArtifactFinder is the registry view used by trait search.
type ArtifactFinder interface {
	LatestRun(ctx context.Context, collection string) (model.Run, error)
	SearchByTrait(ctx context.Context, runID, traitType, value string) ([]model.ArtifactRecord, error)
}

type ShardEntry struct {
	ID       int    `json:"id"`
	Image    string `json:"image"`
	Metadata string `json:"metadata"`
}

type SearchResult struct {
	RunID     string      `json:"run_id"`
	Artifacts []SearchHit `json:"artifacts"`
}

type SearchHit struct {
	ID     int               `json:"id"`
	Shard  int               `json:"shard"`
	Image  string            `json:"image"`
	Traits map[string]string `json:"traits"`
}

func artifactID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

// GetMetadata serves the metadata sidecar of an artifact as written on disk.
func GetMetadata(layout shard.Layout, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := artifactID(r)
		if !ok {
			http.Error(w, "Invalid artifact id", http.StatusBadRequest)
			return
		}

		data, err := os.ReadFile(layout.MetadataPath(id))
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "Artifact not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("reading metadata", "id", id, "error", err)
			http.Error(w, "Failed to read metadata", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			log.Error("writing metadata response", "id", id, "error", err)
		}
	}
}

// GetImage serves the rendered image of an artifact.
func GetImage(layout shard.Layout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := artifactID(r)
		if !ok {
			http.Error(w, "Invalid artifact id", http.StatusBadRequest)
			return
		}
		path := layout.ImagePath(id)
		if _, err := os.Stat(path); err != nil {
			http.Error(w, "Artifact not found", http.StatusNotFound)
			return
		}
		http.ServeFile(w, r, path)
	}
}

// GetShard lists the artifacts whose metadata is present in a shard folder.
func GetShard(layout shard.Layout, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shardID, err := strconv.Atoi(mux.Vars(r)["shard"])
		if err != nil || shardID < 1 {
			http.Error(w, "Invalid shard id", http.StatusBadRequest)
			return
		}

		entries, err := os.ReadDir(filepath.Join(layout.ShardDir(shardID), "metadata"))
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "Shard not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("reading shard", "shard", shardID, "error", err)
			http.Error(w, "Failed to read shard", http.StatusInternalServerError)
			return
		}

		list := []ShardEntry{}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasPrefix(name, layout.FilePrefix) || !strings.HasSuffix(name, ".json") {
				continue
			}
			id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, layout.FilePrefix), ".json"))
			if err != nil || shard.For(id) != shardID {
				continue
			}
			list = append(list, ShardEntry{
				ID:       id,
				Image:    "/artifacts/" + strconv.Itoa(id) + "/image",
				Metadata: "/artifacts/" + strconv.Itoa(id),
			})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

		writeJSON(w, list, log)
	}
}

// SearchArtifacts finds artifacts of the latest run carrying a trait value.
func SearchArtifacts(finder ArtifactFinder, collection, baseURL string, layout shard.Layout, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if finder == nil {
			http.Error(w, "Search requires a registry database", http.StatusServiceUnavailable)
			return
		}

		value := strings.TrimSpace(r.URL.Query().Get("value"))
		if value == "" {
			http.Error(w, "Value parameter is missing", http.StatusBadRequest)
			return
		}
		traitType := r.URL.Query().Get("trait_type")

		run, err := finder.LatestRun(r.Context(), collection)
		if errors.Is(err, postgres.ErrNotFound) {
			http.Error(w, "No runs recorded", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("loading latest run", "error", err)
			http.Error(w, "Failed to search artifacts", http.StatusInternalServerError)
			return
		}

		records, err := finder.SearchByTrait(r.Context(), run.ID, traitType, value)
		if err != nil {
			log.Error("searching artifacts", "trait_type", traitType, "value", value, "error", err)
			http.Error(w, "Failed to search artifacts", http.StatusInternalServerError)
			return
		}

		result := SearchResult{RunID: run.ID, Artifacts: []SearchHit{}}
		for _, rec := range records {
			traits := make(map[string]string, len(rec.Traits))
			for i, v := range rec.Traits {
				if i < len(rec.TraitTypes) {
					traits[rec.TraitTypes[i]] = v
				}
			}
			result.Artifacts = append(result.Artifacts, SearchHit{
				ID:     rec.ArtifactID,
				Shard:  rec.ShardID,
				Image:  baseURL + layout.ImageName(rec.ArtifactID),
				Traits: traits,
			})
		}

		writeJSON(w, result, log)
	}
}

func writeJSON(w http.ResponseWriter, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
