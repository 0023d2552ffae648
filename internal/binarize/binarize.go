// Package binarize reduces enhanced grayscale page buffers to two-level
// images, using a global Otsu threshold for clean modern prints and a local
// adaptive threshold with morphological cleanup for degraded ancient pages.
package binarize

import (
	"errors"
	"fmt"
	"image"

	"github.com/foliocr/folio/internal/utils"
)

// Method selects the thresholding algorithm.
type Method string

const (
	// MethodOtsu computes one global threshold minimizing intra-class
	// variance over the image histogram.
	MethodOtsu Method = "otsu"
	// MethodAdaptive thresholds each pixel against its local neighborhood
	// mean minus an offset, tolerating uneven illumination and stains.
	MethodAdaptive Method = "adaptive"
)

// Config holds the binarization parameters of a book profile.
type Config struct {
	Method       Method
	Window       int  // adaptive neighborhood size (odd)
	Offset       int  // subtracted from the local mean
	MorphCleanup bool // opening+closing pass after thresholding
	KernelSize   int  // morphology kernel (odd)
}

// DefaultConfig returns the global-threshold defaults of the modern profile.
func DefaultConfig() Config {
	return Config{
		Method:       MethodOtsu,
		Window:       11,
		Offset:       2,
		MorphCleanup: false,
		KernelSize:   3,
	}
}

// Binarize produces a two-level (0/255) buffer with the same dimensions as
// the input. All valid inputs binarize, including fully uniform ones.
func Binarize(gray *image.Gray, cfg Config) (*image.Gray, error) {
	if gray == nil {
		return nil, errors.New("nil input image")
	}
	b := gray.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}

	var out *image.Gray
	switch cfg.Method {
	case MethodOtsu:
		hist := utils.Histogram(gray)
		level := OtsuLevel(hist, b.Dx()*b.Dy())
		out = applyGlobalThreshold(gray, level)
	case MethodAdaptive:
		out = applyAdaptiveThreshold(gray, cfg.Window, cfg.Offset)
	default:
		return nil, fmt.Errorf("unknown binarization method %q", cfg.Method)
	}

	if cfg.MorphCleanup {
		out = Open(out, cfg.KernelSize)
		out = Close(out, cfg.KernelSize)
	}
	return out, nil
}

// OtsuLevel returns the threshold maximizing between-class variance for the
// given 256-bin histogram. Uniform histograms yield the single occupied bin,
// so thresholding still produces a valid two-level result.
func OtsuLevel(hist [256]int, total int) uint8 {
	if total == 0 {
		return 0
	}

	var totalSum float64
	for i, c := range hist {
		totalSum += float64(i) * float64(c)
	}

	var sumB float64
	wB := 0
	var maxVariance float64
	best := 0

	for t := range hist {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		meanB := sumB / float64(wB)
		meanF := (totalSum - sumB) / float64(wF)
		variance := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		if variance > maxVariance {
			maxVariance = variance
			best = t
		}
	}
	return uint8(best)
}

// applyGlobalThreshold maps pixels above level to white, the rest to black.
func applyGlobalThreshold(gray *image.Gray, level uint8) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			if v > level {
				dst[x] = 255
			}
		}
	}
	return out
}

// applyAdaptiveThreshold compares each pixel against the mean of its window
// neighborhood minus offset, computed in O(1) per pixel via an integral
// image.
func applyAdaptiveThreshold(gray *image.Gray, window, offset int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	// integral[y][x] = sum of pixels in [0,x) x [0,y).
	integral := make([]int64, (w+1)*(h+1))
	for y := range h {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		var rowSum int64
		for x, v := range row {
			rowSum += int64(v)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		y0 := maxInt(y-half, 0)
		y1 := minInt(y+half, h-1)
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range w {
			x0 := maxInt(x-half, 0)
			x1 := minInt(x+half, w-1)
			count := int64((y1 - y0 + 1) * (x1 - x0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / count
			if int64(src[x]) > mean-int64(offset) {
				dst[x] = 255
			}
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
