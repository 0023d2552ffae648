package binarize

import (
	"image"

	"github.com/foliocr/folio/internal/utils"
)

// Erode shrinks white regions: a pixel stays white only if its whole kernel
// neighborhood is white. With black ink on white paper this thickens strokes
// and eats isolated white speckle inside them.
func Erode(binary *image.Gray, kernelSize int) *image.Gray {
	return morph(binary, kernelSize, func(minV, _ uint8) uint8 { return minV })
}

// Dilate grows white regions: a pixel becomes white if any neighbor within
// the kernel is white.
func Dilate(binary *image.Gray, kernelSize int) *image.Gray {
	return morph(binary, kernelSize, func(_, maxV uint8) uint8 { return maxV })
}

// Open erodes then dilates, removing small white speckle without changing
// larger structures.
func Open(binary *image.Gray, kernelSize int) *image.Gray {
	return Dilate(Erode(binary, kernelSize), kernelSize)
}

// Close dilates then erodes, bridging small black gaps in broken strokes.
func Close(binary *image.Gray, kernelSize int) *image.Gray {
	return Erode(Dilate(binary, kernelSize), kernelSize)
}

// morph applies a min/max filter over a square kernel. Pixels outside the
// image are ignored rather than treated as a fixed value, so borders are not
// artificially eroded or dilated.
func morph(binary *image.Gray, kernelSize int, pick func(minV, maxV uint8) uint8) *image.Gray {
	if kernelSize <= 1 {
		return utils.CloneGray(binary)
	}
	b := binary.Bounds()
	w, h := b.Dx(), b.Dy()
	half := kernelSize / 2

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range w {
			minV := uint8(255)
			maxV := uint8(0)
			for ky := -half; ky <= half; ky++ {
				ny := y + ky
				if ny < 0 || ny >= h {
					continue
				}
				row := binary.Pix[ny*binary.Stride:]
				for kx := -half; kx <= half; kx++ {
					nx := x + kx
					if nx < 0 || nx >= w {
						continue
					}
					v := row[nx]
					if v < minV {
						minV = v
					}
					if v > maxV {
						maxV = v
					}
				}
			}
			dst[x] = pick(minV, maxV)
		}
	}
	return out
}
