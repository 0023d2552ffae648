// Package testutil generates synthetic book pages for tests: printed text
// lines with controllable skew, noise, stains and scanner borders.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PageConfig controls synthetic page generation.
type PageConfig struct {
	Width      int
	Height     int
	Lines      []string
	Background color.Color
	Foreground color.Color
	SkewDeg    float64 // clockwise skew applied after drawing
	NoiseLevel float64 // fraction of pixels perturbed, 0 disables
	Stains     int     // number of dark blotches, 0 disables
	Border     int     // dark scanner border width in pixels, 0 disables
	Seed       int64
}

// ModernPageConfig returns a clean, well-printed page.
func ModernPageConfig() PageConfig {
	return PageConfig{
		Width:      640,
		Height:     480,
		Lines:      []string{"The quick brown fox", "jumps over the lazy dog", "0123456789"},
		Background: color.White,
		Foreground: color.Black,
		Seed:       1,
	}
}

// AncientPageConfig returns a degraded page: yellowed paper, stains, noise
// and a dark scanner border.
func AncientPageConfig() PageConfig {
	cfg := ModernPageConfig()
	cfg.Background = color.RGBA{R: 222, G: 210, B: 170, A: 255}
	cfg.Foreground = color.RGBA{R: 60, G: 50, B: 40, A: 255}
	cfg.NoiseLevel = 0.02
	cfg.Stains = 3
	cfg.Border = 12
	return cfg
}

// GeneratePage renders a synthetic page image from the configuration.
func GeneratePage(cfg PageConfig) image.Image {
	rng := rand.New(rand.NewSource(cfg.Seed))

	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(cfg.Background), image.Point{}, draw.Src)

	drawLines(img, cfg)

	if cfg.Stains > 0 {
		drawStains(img, cfg, rng)
	}
	if cfg.NoiseLevel > 0 {
		addNoise(img, cfg.NoiseLevel, rng)
	}

	var out image.Image = img
	if cfg.SkewDeg != 0 {
		// imaging.Rotate turns counter-clockwise for positive angles, so a
		// clockwise skew needs the negated angle.
		out = imaging.Rotate(out, -cfg.SkewDeg, cfg.Background)
	}
	if cfg.Border > 0 {
		out = addBorder(out, cfg.Border)
	}
	return out
}

// UniformImage returns a single-color image, useful for degenerate-input
// tests (blank pages, zero-variance histograms).
func UniformImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func drawLines(img *image.RGBA, cfg PageConfig) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(cfg.Foreground),
		Face: face,
	}

	lineHeight := face.Metrics().Height.Ceil() * 3
	startY := cfg.Height/2 - len(cfg.Lines)*lineHeight/2
	for i, line := range cfg.Lines {
		y := startY + (i+1)*lineHeight
		textWidth := font.MeasureString(face, line).Ceil()
		x := (cfg.Width - textWidth) / 2
		if x < 0 {
			x = 0
		}
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}
}

func drawStains(img *image.RGBA, cfg PageConfig, rng *rand.Rand) {
	for range cfg.Stains {
		cx := rng.Intn(cfg.Width)
		cy := rng.Intn(cfg.Height)
		radius := 8 + rng.Intn(16)
		stain := color.RGBA{R: 120, G: 100, B: 70, A: 255}

		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx*dx+dy*dy > radius*radius {
					continue
				}
				x, y := cx+dx, cy+dy
				if image.Pt(x, y).In(img.Bounds()) {
					img.Set(x, y, stain)
				}
			}
		}
	}
}

func addNoise(img *image.RGBA, level float64, rng *rand.Rand) {
	b := img.Bounds()
	count := int(float64(b.Dx()*b.Dy()) * level)
	for range count {
		x := b.Min.X + rng.Intn(b.Dx())
		y := b.Min.Y + rng.Intn(b.Dy())
		v := uint8(rng.Intn(256))
		img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
	}
}

// addBorder frames the image with a dark band, imitating the platen edge of
// a flatbed scan.
func addBorder(img image.Image, width int) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*width, b.Dy()+2*width))
	dark := color.RGBA{R: 20, G: 20, B: 20, A: 255}
	draw.Draw(out, out.Bounds(), image.NewUniform(dark), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(width, width, width+b.Dx(), width+b.Dy()), img, b.Min, draw.Src)
	return out
}

// MeanIntensity returns the average gray level of an image, for asserting
// enhancement effects without pixel-exact comparisons.
func MeanIntensity(img image.Image) float64 {
	b := img.Bounds()
	var sum, n float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			gray := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)
			sum += gray / 257.0
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// ForegroundRatio returns the fraction of pixels in a binary image that are
// black (value below 128).
func ForegroundRatio(img *image.Gray) float64 {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	dark := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y < 128 {
				dark++
			}
		}
	}
	return float64(dark) / float64(total)
}
