package scripts_test

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"ArtForge/internal/imaging"
	"ArtForge/internal/testutil"
	"ArtForge/scripts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// noisy returns an image that compresses poorly as PNG.
func noisy(w, h int, seed uint64) *image.NRGBA {
	rng := rand.New(rand.NewPCG(seed, seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256)), A: 0xff})
		}
	}
	return img
}

func TestCompressAll(t *testing.T) {
	base := t.TempDir()
	names := []string{"robusnipe1.png", "robusnipe2.png", "robusnipe3.png"}
	for i, name := range names {
		testutil.WritePNG(t, filepath.Join(base, "robusnipe-1", "images", name), noisy(64, 64, uint64(i+1)))
	}
	testutil.WritePNG(t, filepath.Join(base, "robusnipe-2", "images", "robusnipe101.png"), noisy(64, 64, 9))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "robusnipe-3", "metadata"), 0o755))

	report, err := scripts.CompressAll(base, scripts.CompressOptions{
		ShardPrefix: "robusnipe-",
		Folders:     3,
		Quality:     60,
	}, quiet)
	require.NoError(t, err)

	assert.Len(t, report.Files, 4)
	assert.Empty(t, report.Failed())
	assert.Equal(t, []string{filepath.Join(base, "robusnipe-3")}, report.MissingFolders)
	assert.Positive(t, report.Saved())

	entries, err := os.ReadDir(filepath.Join(base, "robusnipe-1", "images"))
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.Equal(t, names, got)

	for _, name := range names {
		img, format, err := imaging.Open(filepath.Join(base, "robusnipe-1", "images", name))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 64, img.Bounds().Dx())
	}
	for _, f := range report.Files {
		assert.Less(t, f.BytesAfter, f.BytesBefore, f.Path)
	}
}

func TestCompressFolderMissingImages(t *testing.T) {
	_, err := scripts.CompressFolder(t.TempDir(), scripts.CompressOptions{}, quiet)
	require.ErrorIs(t, err, scripts.ErrMissingImages)
}

func TestCompressFolderSkipsOtherFiles(t *testing.T) {
	folder := t.TempDir()
	imagesDir := filepath.Join(folder, "images")
	testutil.WritePNG(t, filepath.Join(imagesDir, "a.png"), noisy(8, 8, 1))
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "a.json"), []byte("{}"), 0o644))

	results, err := scripts.CompressFolder(folder, scripts.CompressOptions{Quality: 85}, quiet)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(imagesDir, "a.png"), results[0].Path)

	data, err := os.ReadFile(filepath.Join(imagesDir, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestCompressImageDropsAlphaAndScales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	testutil.WritePNG(t, path, testutil.Solid(40, 20, color.NRGBA{R: 0xff, A: 0x00}))

	result := scripts.CompressImage(path, scripts.CompressOptions{Quality: 90, MaxDimension: 10, Backdrop: color.White})
	require.NoError(t, result.Err)

	img, format, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 10, 5), img.Bounds())

	r, g, b, a := img.At(5, 2).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Greater(t, r>>8, uint32(0xf0))
	assert.Greater(t, g>>8, uint32(0xf0))
	assert.Greater(t, b>>8, uint32(0xf0))
}

func TestCompressImageBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	result := scripts.CompressImage(path, scripts.CompressOptions{})
	require.Error(t, result.Err)
	assert.Equal(t, int64(4), result.BytesBefore)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "nope", string(data))
}

func TestCompressAllReportsFailures(t *testing.T) {
	base := t.TempDir()
	imagesDir := filepath.Join(base, "f1", "images")
	testutil.WritePNG(t, filepath.Join(imagesDir, "good.png"), noisy(8, 8, 2))
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "bad.png"), []byte("nope"), 0o644))

	report, err := scripts.CompressAll(base, scripts.CompressOptions{ShardPrefix: "f", Folders: 1}, quiet)
	require.Error(t, err)
	assert.Len(t, report.Files, 2)
	assert.Len(t, report.Failed(), 1)
}
