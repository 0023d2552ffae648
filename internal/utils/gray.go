package utils

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToGray converts an image to a single-channel luminance buffer. The input is
// never mutated; the result is always a fresh buffer, so callers may treat
// stage boundaries as aliasing-free.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return CloneGray(g)
	}
	// imaging.Grayscale applies luminance-weighted channel reduction.
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := range b.Dx() {
			dst[x] = src[x*4] // channels are equal after Grayscale
		}
	}
	return out
}

// CloneGray returns a deep copy of a grayscale buffer.
func CloneGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		srcOff := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[srcOff:srcOff+b.Dx()])
	}
	return out
}

// Histogram builds a 256-bin intensity histogram of a grayscale buffer.
func Histogram(g *image.Gray) [256]int {
	var h [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[(y-g.Rect.Min.Y)*g.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			h[row[x-g.Rect.Min.X]]++
		}
	}
	return h
}
