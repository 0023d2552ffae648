package geometry

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/foliocr/folio/internal/utils"
)

// maximum number of foreground samples used for skew estimation; enough for a
// stable projection profile without scanning every glyph pixel.
const maxSkewSamples = 40000

// Deskew estimates the global text-line rotation via a projection-profile
// search and corrects it. Rotation is skipped when the estimated magnitude is
// below cfg.DeskewMinAngle so already-straight pages are not resampled. The
// rotated canvas is filled with the estimated page background rather than
// black, so the border-trim stage is not confused by hard corners.
func Deskew(img image.Image, cfg Config) image.Image {
	angle := EstimateSkew(img, cfg.DeskewMaxAngle)
	if math.Abs(angle) < cfg.DeskewMinAngle {
		return img
	}
	return imaging.Rotate(img, angle, backgroundColor(utils.ToGray(img)))
}

// EstimateSkew returns the correction angle in degrees (the angle to rotate
// the image by) that best aligns the dominant text-line orientation with the
// horizontal axis. The search covers [-maxAngle, maxAngle], coarse first and
// refined to a tenth of a degree. Blank pages yield zero.
func EstimateSkew(img image.Image, maxAngle float64) float64 {
	gray := utils.ToGray(img)

	// Downscale large pages; skew is a global property.
	b := gray.Bounds()
	if longer := max(b.Dx(), b.Dy()); longer > 1000 {
		gray = utils.ToGray(imaging.Resize(gray, b.Dx()*1000/longer, b.Dy()*1000/longer, imaging.Box))
	}

	xs, ys := foregroundSamples(gray)
	if len(xs) < 64 {
		return 0
	}

	best := 0.0
	bestScore := projectionScore(xs, ys, 0)
	for a := -maxAngle; a <= maxAngle+1e-9; a += 1.0 {
		if s := projectionScore(xs, ys, a); s > bestScore {
			bestScore, best = s, a
		}
	}
	coarse := best
	for a := coarse - 0.9; a <= coarse+0.9+1e-9; a += 0.1 {
		if a < -maxAngle || a > maxAngle {
			continue
		}
		if s := projectionScore(xs, ys, a); s > bestScore {
			bestScore, best = s, a
		}
	}
	return best
}

// foregroundSamples collects up to maxSkewSamples dark-pixel coordinates.
// Foreground is taken as anything darker than one standard deviation below
// the mean, which is robust for ink on paper regardless of exposure. The cap
// is enforced by thinning the foreground in raster order; a coordinate grid
// would quantize the y values and bias the projection search toward zero.
func foregroundSamples(gray *image.Gray) ([]int, []int) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}

	var sum, sumSq float64
	for y := range h {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for _, v := range row {
			f := float64(v)
			sum += f
			sumSq += f * f
		}
	}
	n := float64(w * h)
	mean := sum / n
	std := math.Sqrt(math.Max(sumSq/n-mean*mean, 0))
	if std < 1 {
		// Uniform page, nothing to align.
		return nil, nil
	}
	thresh := uint8(math.Max(mean-std, 0))

	nf := 0
	for y := range h {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for _, v := range row {
			if v < thresh {
				nf++
			}
		}
	}
	if nf == 0 {
		return nil, nil
	}
	step := (nf + maxSkewSamples - 1) / maxSkewSamples

	xs := make([]int, 0, nf/step+1)
	ys := make([]int, 0, nf/step+1)
	seen := 0
	for y := range h {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x, v := range row {
			if v >= thresh {
				continue
			}
			if seen%step == 0 {
				xs = append(xs, x)
				ys = append(ys, y)
			}
			seen++
		}
	}
	return xs, ys
}

// skewBinWidth groups projected rows into 2 px histogram bins. At angle zero
// the sample y values are exact integers; 1 px bins would let them collapse
// perfectly while any other angle spreads fractionally across bin edges,
// biasing the search toward zero.
const skewBinWidth = 2

// projectionScore measures how sharply the foreground collapses into rows
// after rotating the sample cloud by angle degrees. The sum of squared bin
// counts peaks when text lines are horizontal.
func projectionScore(xs, ys []int, angleDeg float64) float64 {
	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	minY, maxY := math.Inf(1), math.Inf(-1)
	rotated := make([]float64, len(xs))
	for i := range xs {
		// Matches the content transform applied by imaging.Rotate in
		// y-down pixel coordinates.
		ry := -float64(xs[i])*sin + float64(ys[i])*cos
		rotated[i] = ry
		if ry < minY {
			minY = ry
		}
		if ry > maxY {
			maxY = ry
		}
	}
	bins := int((maxY-minY)/skewBinWidth) + 2
	if bins < 2 {
		return 0
	}
	hist := make([]float64, bins)
	for _, ry := range rotated {
		hist[int((ry-minY)/skewBinWidth)]++
	}
	var score float64
	for _, c := range hist {
		score += c * c
	}
	return score
}

// backgroundColor estimates the page background from the outermost pixel
// frame, used as rotation fill.
func backgroundColor(gray *image.Gray) color.Color {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.White
	}
	var sum, count int
	for x := range w {
		sum += int(gray.Pix[x])
		sum += int(gray.Pix[(h-1)*gray.Stride+x])
		count += 2
	}
	for y := range h {
		sum += int(gray.Pix[y*gray.Stride])
		sum += int(gray.Pix[y*gray.Stride+w-1])
		count += 2
	}
	return color.Gray{Y: uint8(sum / count)}
}
