// Package geometry normalizes the geometry of scanned or photographed book
// pages: dimension bounding, skew correction and scan-border removal. Stages
// never mutate their input; each returns a fresh buffer.
package geometry

import (
	"errors"
	"fmt"
	"image"
)

// Config controls geometric normalization.
type Config struct {
	MaxDimension   int     // longest side after resize (no upscaling)
	DeskewMaxAngle float64 // search range for skew estimation, degrees
	DeskewMinAngle float64 // below this magnitude rotation is skipped
	TrimMargin     int     // safety margin kept around content when trimming
}

// DefaultConfig returns the normalization defaults used by both book
// profiles.
func DefaultConfig() Config {
	return Config{
		MaxDimension:   2000,
		DeskewMaxAngle: 15.0,
		DeskewMinAngle: 0.1,
		TrimMargin:     10,
	}
}

// Normalize chains resize, deskew and border trim. The input image is left
// untouched. A nil or zero-size input is an error; no partial output is
// produced.
func Normalize(img image.Image, cfg Config) (image.Image, error) {
	if img == nil {
		return nil, errors.New("nil input image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}

	out := Resize(img, cfg.MaxDimension)
	out = Deskew(out, cfg)
	out = TrimBorder(out, cfg.TrimMargin)
	return out, nil
}
