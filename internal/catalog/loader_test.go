package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"ArtForge/internal/catalog"
	"ArtForge/internal/model"
	"ArtForge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFolder(t *testing.T) {
	dir := t.TempDir()
	folder := testutil.LayerFolder(t, dir, "BG", "blue", "red")
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "night.jpeg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "dawn.jpg"), []byte("x"), 0o644))
	testutil.LayerFolder(t, folder, "nested", "ignored")

	options, err := catalog.LoadFolder(folder)
	require.NoError(t, err)

	assert.Equal(t, []model.LayerOption{
		{Path: filepath.Join(folder, "blue.png"), Label: "blue"},
		{Path: filepath.Join(folder, "dawn.jpg"), Label: "dawn"},
		{Path: filepath.Join(folder, "night.jpeg"), Label: "night"},
		{Path: filepath.Join(folder, "red.png"), Label: "red"},
	}, options)
}

func TestLoadFolderEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	_, err := catalog.LoadFolder(dir)
	require.ErrorIs(t, err, catalog.ErrNoAssets)
	assert.Contains(t, err.Error(), dir)
}

func TestLoadFolderMissing(t *testing.T) {
	_, err := catalog.LoadFolder(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadKeepsDeclarationOrder(t *testing.T) {
	dir := t.TempDir()
	sources := []catalog.Source{
		{Name: "Background", Folder: testutil.LayerFolder(t, dir, "BG", "a", "b")},
		{Name: "body", Folder: testutil.LayerFolder(t, dir, "Body", "x")},
		{Name: "helmet", Folder: testutil.LayerFolder(t, dir, "Helmet", "a")},
	}

	categories, err := catalog.Load(sources)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Background", categories[0].Name)
	assert.Len(t, categories[0].Options, 2)
	assert.Equal(t, "body", categories[1].Name)
	assert.Equal(t, "helmet", categories[2].Name)
	// Same label in two categories is fine.
	assert.Equal(t, "a", categories[2].Options[0].Label)
}

func TestLoadFailsOnEmptyCategory(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "Goggles")
	require.NoError(t, os.MkdirAll(empty, 0o755))

	_, err := catalog.Load([]catalog.Source{
		{Name: "Background", Folder: testutil.LayerFolder(t, dir, "BG", "a")},
		{Name: "goggles", Folder: empty},
	})
	require.ErrorIs(t, err, catalog.ErrNoAssets)
	assert.Contains(t, err.Error(), "goggles")
}

func TestLoadNoSources(t *testing.T) {
	_, err := catalog.Load(nil)
	require.ErrorIs(t, err, catalog.ErrNoCategories)
}

func TestIsImage(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png":  true,
		"a.PNG":  true,
		"a.jpg":  true,
		"a.jpeg": true,
		"a.gif":  false,
		"png":    false,
		"a.json": false,
	} {
		assert.Equal(t, want, catalog.IsImage(name), name)
	}
}
