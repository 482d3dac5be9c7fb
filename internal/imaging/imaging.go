// Package imaging wraps the decode, composite and encode steps shared by the
// artifact synthesizer and the post-processing scripts.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	imgkit "github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 85

var ErrNoLayers = errors.New("no layers to composite")

// Open decodes the image at path. The file is closed before Open returns on
// every path, so callers only ever hold decoded pixels.
func Open(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	_, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", path, err)
	}
	if format != "jpeg" && format != "png" {
		return nil, "", fmt.Errorf("unsupported format %q for file: %s", format, path)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", err
	}

	img, err := imgkit.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, format, nil
}

// Composite paints layers bottom to top onto a transparent canvas the size of
// the first layer. Every layer is anchored at the canvas origin; layers are
// expected to share the first layer's dimensions and are neither scaled nor
// aligned. Pixels of a larger layer that fall outside the canvas are dropped.
func Composite(layers []image.Image) (*image.NRGBA, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	bounds := layers[0].Bounds()
	canvas := imgkit.New(bounds.Dx(), bounds.Dy(), color.NRGBA{})
	for _, layer := range layers {
		canvas = imgkit.Overlay(canvas, layer, image.Pt(0, 0), 1.0)
	}
	return canvas, nil
}

// Flatten resolves any transparency in img against backdrop and returns a fully
// opaque copy.
func Flatten(img image.Image, backdrop color.Color) *image.NRGBA {
	b := img.Bounds()
	out := imgkit.New(b.Dx(), b.Dy(), opaque(backdrop))
	return imgkit.Overlay(out, img, image.Pt(0, 0), 1.0)
}

func opaque(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

// ParseBackdrop parses a hex colour such as "#ffffff". An empty string yields
// black, which is what dropping the alpha channel of a premultiplied canvas
// produces.
func ParseBackdrop(hex string) (color.Color, error) {
	if hex == "" {
		return color.Black, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid backdrop colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Thumbnail scales img down to fit within a size x size box, keeping the aspect
// ratio. Images already inside the box are returned unchanged.
func Thumbnail(img image.Image, size uint) image.Image {
	return resize.Thumbnail(size, size, img, resize.Lanczos3)
}

// WritePNG encodes img as PNG into path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	return WriteFile(path, func(w io.Writer) error {
		return imgkit.Encode(w, img, imgkit.PNG)
	})
}

// WriteJPEG encodes img as JPEG at the given quality into path.
func WriteJPEG(path string, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return WriteFile(path, func(w io.Writer) error {
		return imgkit.Encode(w, img, imgkit.JPEG, imgkit.JPEGQuality(quality))
	})
}

// WriteFile writes through a temporary file in the destination directory and
// renames it over path, so an interrupted write never leaves a truncated file.
func WriteFile(path string, encode func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
