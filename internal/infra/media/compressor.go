package media

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"autos-admin/internal/config"
	"autos-admin/internal/domain/ports/adapter"
)

var _ adapter.ImageCompressor = (*JPEGCompressor)(nil)

var ErrUnsupportedImage = errors.New("unsupported image format")

// JPEGCompressor scales images into a bounding box and re-encodes them as JPEG.
type JPEGCompressor struct {
	maxW, maxH int
	quality    int
}

func NewJPEGCompressor(cfg config.MediaConfig) *JPEGCompressor {
	return &JPEGCompressor{maxW: cfg.MaxWidth, maxH: cfg.MaxHeight, quality: cfg.Quality}
}

// Compress returns the re-encoded bytes and their content type.
func (c *JPEGCompressor) Compress(data []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrUnsupportedImage
	}

	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), c.maxW, c.maxH)

	var dst image.Image = src
	if w != b.Dx() || h != b.Dy() {
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), src, b, draw.Over, nil)
		dst = rgba
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}

// Fit scales w x h down to fit maxW x maxH keeping the aspect ratio. It never upscales.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if maxW > 0 && w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if maxH > 0 && h > maxH {
		w = w * maxH / h
		h = maxH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
