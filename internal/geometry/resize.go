package geometry

import (
	"image"

	"github.com/disintegration/imaging"
)

// Resize scales an image down so that its longer side equals maxDimension,
// preserving aspect ratio. Images at or below the limit are cloned unchanged;
// the function never upscales.
func Resize(img image.Image, maxDimension int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	longer := w
	if h > longer {
		longer = h
	}
	if maxDimension <= 0 || longer <= maxDimension {
		return imaging.Clone(img)
	}

	scale := float64(maxDimension) / float64(longer)
	var newW, newH int
	if w >= h {
		newW = maxDimension
		newH = int(float64(h)*scale + 0.5)
	} else {
		newH = maxDimension
		newW = int(float64(w)*scale + 0.5)
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}
