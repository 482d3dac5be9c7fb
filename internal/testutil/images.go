// Package testutil builds layer folders and images for tests.
package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Solid returns a w x h image filled with c.
func Solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// LayerFolder writes one 4x4 PNG per label into dir/folder and returns the
// folder path. Labels become file names, so they must be unique.
func LayerFolder(t testing.TB, dir, folder string, labels ...string) string {
	t.Helper()
	path := filepath.Join(dir, folder)
	require.NoError(t, os.MkdirAll(path, 0o755))
	for i, label := range labels {
		c := color.NRGBA{R: uint8(40 * (i + 1)), G: 0x20, B: 0x80, A: 0xff}
		WritePNG(t, filepath.Join(path, label+".png"), Solid(4, 4, c))
	}
	return path
}
