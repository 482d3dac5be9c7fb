package router_test

import (
	"context"
	"encoding/json"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"ArtForge/config"
	"ArtForge/internal/handler"
	"ArtForge/internal/model"
	"ArtForge/internal/repository/postgres"
	"ArtForge/internal/router"
	"ArtForge/internal/synth"
	"ArtForge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeFinder struct {
	run       model.Run
	runErr    error
	records   []model.ArtifactRecord
	traitType string
	value     string
}

func (f *fakeFinder) LatestRun(_ context.Context, _ string) (model.Run, error) {
	return f.run, f.runErr
}

func (f *fakeFinder) SearchByTrait(_ context.Context, _ string, traitType, value string) ([]model.ArtifactRecord, error) {
	f.traitType, f.value = traitType, value
	return f.records, nil
}

func collection() config.Collection {
	c, err := config.Preset("robusnipe")
	if err != nil {
		panic(err)
	}
	c.BaseURL = "https://ipfs.example/robusnipe/"
	return c
}

// generated writes artifacts 1, 2 and 101 with a real synthesizer.
func generated(t *testing.T) string {
	t.Helper()
	out := t.TempDir()
	layers := t.TempDir()
	bg := filepath.Join(layers, "Red.png")
	testutil.WritePNG(t, bg, testutil.Solid(2, 2, color.NRGBA{R: 0xff, A: 0xff}))

	combo := model.Combination{
		{Path: bg, Label: "Red"}, {Path: bg, Label: "Red"}, {Path: bg, Label: "Red"}, {Path: bg, Label: "Red"},
	}
	s := synth.New(collection(), out, synth.Options{})
	for _, id := range []int{1, 2, 101} {
		_, err := s.Synthesize(model.Job{ID: id, Shard: (id-1)/100 + 1, Combination: combo})
		require.NoError(t, err)
	}
	return out
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetMetadata(t *testing.T) {
	r := router.NewRouter(collection(), generated(t), nil, quiet)

	rec := get(t, r, "/artifacts/101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var meta model.MetadataRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "Robusnipe101", meta.Name)
	assert.Equal(t, "https://ipfs.example/robusnipe/robusnipe101.png", meta.Image)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/artifacts/5").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/artifacts/0").Code)
}

func TestGetImage(t *testing.T) {
	r := router.NewRouter(collection(), generated(t), nil, quiet)

	rec := get(t, r, "/artifacts/2/image")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, get(t, r, "/artifacts/3/image").Code)
}

func TestPreflight(t *testing.T) {
	r := router.NewRouter(collection(), t.TempDir(), nil, quiet)

	for _, target := range []string{"/artifacts/1", "/search"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), target)
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"), target)
	}
}

func TestGetShard(t *testing.T) {
	r := router.NewRouter(collection(), generated(t), nil, quiet)

	rec := get(t, r, "/shards/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []handler.ShardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].ID)
	assert.Equal(t, "/artifacts/2/image", entries[1].Image)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/shards/9").Code)
}

func TestStaticFiles(t *testing.T) {
	r := router.NewRouter(collection(), generated(t), nil, quiet)

	rec := get(t, r, "/static/robusnipe-2/metadata/robusnipe101.json")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchWithoutRegistry(t *testing.T) {
	r := router.NewRouter(collection(), t.TempDir(), nil, quiet)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, r, "/search?value=Red").Code)
}

func TestSearch(t *testing.T) {
	finder := &fakeFinder{
		run: model.Run{ID: "run-1"},
		records: []model.ArtifactRecord{{
			ArtifactID: 7,
			ShardID:    1,
			TraitTypes: []string{"Background", "body"},
			Traits:     []string{"Red", "Gold"},
		}},
	}
	r := router.NewRouter(collection(), t.TempDir(), finder, quiet)

	rec := get(t, r, "/search?trait_type=body&value=Gold")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body", finder.traitType)
	assert.Equal(t, "Gold", finder.value)

	var result handler.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, "https://ipfs.example/robusnipe/robusnipe7.png", result.Artifacts[0].Image)
	assert.Equal(t, map[string]string{"Background": "Red", "body": "Gold"}, result.Artifacts[0].Traits)

	assert.Equal(t, http.StatusBadRequest, get(t, r, "/search").Code)
}

func TestSearchNoRuns(t *testing.T) {
	r := router.NewRouter(collection(), t.TempDir(), &fakeFinder{runErr: postgres.ErrNotFound}, quiet)
	assert.Equal(t, http.StatusNotFound, get(t, r, "/search?value=Red").Code)
}
