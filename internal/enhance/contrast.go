package enhance

import (
	"image"

	"github.com/foliocr/folio/internal/utils"
)

// StretchContrast linearly remaps intensities so that the loPct and hiPct
// percentiles land on 0 and 255. Zero-variance input (blank page) is returned
// as an unmodified copy; the stretch never divides by zero.
func StretchContrast(gray *image.Gray, loPct, hiPct float64) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	if total == 0 {
		return utils.CloneGray(gray)
	}

	hist := utils.Histogram(gray)
	lo := percentile(hist, total, loPct)
	hi := percentile(hist, total, hiPct)
	if hi <= lo {
		return utils.CloneGray(gray)
	}

	var lut [256]uint8
	scale := 255.0 / float64(hi-lo)
	for i := range lut {
		v := (float64(i) - float64(lo)) * scale
		switch {
		case v < 0:
			lut[i] = 0
		case v > 255:
			lut[i] = 255
		default:
			lut[i] = uint8(v + 0.5)
		}
	}
	return applyLUT(gray, lut)
}

// percentile returns the intensity at which the cumulative histogram reaches
// pct percent of total.
func percentile(hist [256]int, total int, pct float64) int {
	target := int(float64(total) * pct / 100.0)
	cum := 0
	for i, c := range hist {
		cum += c
		if cum >= target {
			return i
		}
	}
	return 255
}

func applyLUT(gray *image.Gray, lut [256]uint8) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			dst[x] = lut[v]
		}
	}
	return out
}

// CLAHE performs contrast-limited adaptive histogram equalization over an
// n x n tile grid. Each tile's histogram is clipped at clipLimit times the
// uniform bin height and the excess redistributed before building its
// equalization mapping; per-pixel output bilinearly interpolates between the
// four surrounding tile mappings to avoid visible tile seams.
func CLAHE(gray *image.Gray, tiles int, clipLimit float64) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return utils.CloneGray(gray)
	}
	if tiles < 1 {
		tiles = 1
	}
	if tiles > w {
		tiles = w
	}
	if tiles > h {
		tiles = h
	}

	luts := buildTileLUTs(gray, tiles, clipLimit)

	tileW := float64(w) / float64(tiles)
	tileH := float64(h) / float64(tiles)
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		// Position in tile-center space.
		ty := (float64(y)+0.5)/tileH - 0.5
		t0 := clampInt(int(ty), 0, tiles-1)
		t1 := clampInt(t0+1, 0, tiles-1)
		fy := ty - float64(t0)
		if fy < 0 {
			fy = 0
		}
		if fy > 1 {
			fy = 1
		}

		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			tx := (float64(x)+0.5)/tileW - 0.5
			s0 := clampInt(int(tx), 0, tiles-1)
			s1 := clampInt(s0+1, 0, tiles-1)
			fx := tx - float64(s0)
			if fx < 0 {
				fx = 0
			}
			if fx > 1 {
				fx = 1
			}

			v00 := float64(luts[t0*tiles+s0][v])
			v01 := float64(luts[t0*tiles+s1][v])
			v10 := float64(luts[t1*tiles+s0][v])
			v11 := float64(luts[t1*tiles+s1][v])
			top := v00*(1-fx) + v01*fx
			bot := v10*(1-fx) + v11*fx
			dst[x] = uint8(top*(1-fy) + bot*fy + 0.5)
		}
	}
	return out
}

// buildTileLUTs computes one clipped equalization mapping per tile.
func buildTileLUTs(gray *image.Gray, tiles int, clipLimit float64) [][256]uint8 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	luts := make([][256]uint8, tiles*tiles)

	for ty := range tiles {
		y0 := ty * h / tiles
		y1 := (ty + 1) * h / tiles
		for tx := range tiles {
			x0 := tx * w / tiles
			x1 := (tx + 1) * w / tiles

			var hist [256]int
			for y := y0; y < y1; y++ {
				row := gray.Pix[y*gray.Stride:]
				for x := x0; x < x1; x++ {
					hist[row[x]]++
				}
			}
			n := (y1 - y0) * (x1 - x0)
			luts[ty*tiles+tx] = clippedEqualizationLUT(hist, n, clipLimit)
		}
	}
	return luts
}

// clippedEqualizationLUT clips the histogram, redistributes the excess
// uniformly, and returns the resulting CDF mapping. A zero-variance tile maps
// to identity.
func clippedEqualizationLUT(hist [256]int, n int, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	occupied := 0
	for _, c := range hist {
		if c > 0 {
			occupied++
		}
	}
	if n == 0 || occupied <= 1 {
		// Zero-variance tile: identity, so blank regions are not remapped.
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	limit := int(clipLimit * float64(n) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	remainder := excess % 256
	for i := range hist {
		hist[i] += share
		if i < remainder {
			hist[i]++
		}
	}

	cum := 0
	for i, c := range hist {
		cum += c
		lut[i] = uint8((255*cum + n/2) / n)
	}
	return lut
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
