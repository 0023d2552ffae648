package enhance

import (
	"image"
	"math"

	"github.com/foliocr/folio/internal/utils"
)

// patchRadius is the half-size of the comparison patch used by Denoise.
const patchRadius = 1

// Denoise applies a non-local-means filter: each pixel is replaced by a
// weighted average of pixels in its search window, weighted by patch
// similarity. This smooths sensor and paper grain while keeping glyph edges,
// because dissimilar patches (edges) contribute almost nothing.
//
// strength is the filtering parameter h; searchRadius bounds the window. The
// strong/wide setting used for ancient pages is noticeably slower, which the
// pipeline tolerates by design of the profile.
func Denoise(gray *image.Gray, strength float64, searchRadius int) *image.Gray {
	if strength <= 0 || searchRadius <= 0 {
		return utils.CloneGray(gray)
	}
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 2*patchRadius || h <= 2*patchRadius {
		return utils.CloneGray(gray)
	}

	// weight = exp(-d2 / h^2) over the mean squared patch difference d2.
	h2 := strength * strength
	patchArea := float64((2*patchRadius + 1) * (2*patchRadius + 1))

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range w {
			var weightSum, valueSum float64
			for dy := -searchRadius; dy <= searchRadius; dy++ {
				ny := y + dy
				if ny < patchRadius || ny >= h-patchRadius {
					continue
				}
				for dx := -searchRadius; dx <= searchRadius; dx++ {
					nx := x + dx
					if nx < patchRadius || nx >= w-patchRadius {
						continue
					}
					d2 := patchDistance(gray, x, y, nx, ny, w, h) / patchArea
					wgt := math.Exp(-d2 / h2)
					weightSum += wgt
					valueSum += wgt * float64(gray.Pix[ny*gray.Stride+nx])
				}
			}
			if weightSum > 0 {
				dst[x] = uint8(valueSum/weightSum + 0.5)
			} else {
				dst[x] = gray.Pix[y*gray.Stride+x]
			}
		}
	}
	return out
}

// patchDistance returns the summed squared difference between the patches
// centered at (x0,y0) and (x1,y1). Out-of-bounds patch pixels are clamped to
// the image edge.
func patchDistance(gray *image.Gray, x0, y0, x1, y1, w, h int) float64 {
	var sum float64
	for py := -patchRadius; py <= patchRadius; py++ {
		a := clampInt(y0+py, 0, h-1) * gray.Stride
		b := clampInt(y1+py, 0, h-1) * gray.Stride
		for px := -patchRadius; px <= patchRadius; px++ {
			va := float64(gray.Pix[a+clampInt(x0+px, 0, w-1)])
			vb := float64(gray.Pix[b+clampInt(x1+px, 0, w-1)])
			d := va - vb
			sum += d * d
		}
	}
	return sum
}
