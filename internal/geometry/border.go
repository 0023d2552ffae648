package geometry

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/foliocr/folio/internal/utils"
)

// borderTolerance is the intensity distance from the border reference within
// which a pixel still counts as scan background.
const borderTolerance = 40

// borderUniformity is the fraction of background pixels a full row or column
// must contain to be treated as scan margin.
const borderUniformity = 0.97

// TrimBorder removes a near-uniform strip of scan background (light or dark)
// around the page content, keeping margin pixels of slack so text is never
// clipped. Pages without any border pass through with their full extent.
func TrimBorder(img image.Image, margin int) image.Image {
	gray := utils.ToGray(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return imaging.Clone(img)
	}

	ref := borderReference(gray)

	// Only trim when the outer frame is a distinct scan border. A page whose
	// margins match its interior background has no border to remove.
	if absInt(ref-interiorReference(gray)) <= borderTolerance {
		return imaging.Clone(img)
	}

	top := 0
	for top < h && rowIsBackground(gray, top, w, ref) {
		top++
	}
	bottom := h - 1
	for bottom > top && rowIsBackground(gray, bottom, w, ref) {
		bottom--
	}
	left := 0
	for left < w && colIsBackground(gray, left, h, ref) {
		left++
	}
	right := w - 1
	for right > left && colIsBackground(gray, right, h, ref) {
		right--
	}

	// Entirely background, or content spans the full frame: pass through.
	if top >= bottom || left >= right {
		return imaging.Clone(img)
	}

	top = maxInt(top-margin, 0)
	bottom = minInt(bottom+margin, h-1)
	left = maxInt(left-margin, 0)
	right = minInt(right+margin, w-1)
	if top == 0 && left == 0 && bottom == h-1 && right == w-1 {
		return imaging.Clone(img)
	}

	rect := image.Rect(img.Bounds().Min.X+left, img.Bounds().Min.Y+top,
		img.Bounds().Min.X+right+1, img.Bounds().Min.Y+bottom+1)
	return imaging.Crop(img, rect)
}

// borderReference estimates the scan-background intensity as the mean of the
// outermost pixel frame.
func borderReference(gray *image.Gray) int {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
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
	return sum / count
}

// interiorReference estimates the page background intensity from the central
// quarter of the image, away from any scan border.
func interiorReference(gray *image.Gray) int {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	x0, x1 := w/4, w-w/4
	y0, y1 := h/4, h-h/4
	if x1 <= x0 || y1 <= y0 {
		return borderReference(gray)
	}
	var sum, count int
	for y := y0; y < y1; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := x0; x < x1; x++ {
			sum += int(row[x])
			count++
		}
	}
	return sum / count
}

func rowIsBackground(gray *image.Gray, y, w, ref int) bool {
	row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
	matching := 0
	for _, v := range row {
		if absInt(int(v)-ref) <= borderTolerance {
			matching++
		}
	}
	return float64(matching) >= borderUniformity*float64(w)
}

func colIsBackground(gray *image.Gray, x, h, ref int) bool {
	matching := 0
	for y := range h {
		if absInt(int(gray.Pix[y*gray.Stride+x])-ref) <= borderTolerance {
			matching++
		}
	}
	return float64(matching) >= borderUniformity*float64(h)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
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
