package utils

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("scan.png"))
	assert.True(t, IsSupportedImage("SCAN.JPG"))
	assert.True(t, IsSupportedImage("page.tiff"))
	assert.True(t, IsSupportedImage("page.bmp"))
	assert.False(t, IsSupportedImage("book.pdf"))
	assert.False(t, IsSupportedImage("notes.txt"))
	assert.False(t, IsSupportedImage("noext"))
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "page.png", 120, 80)

	img, meta, err := LoadImage(path)
	require.NoError(t, err)

	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 120, meta.Width)
	assert.Equal(t, 80, meta.Height)
	assert.Equal(t, "png", meta.Format)
	assert.InDelta(t, 1.5, meta.AspectRatio, 1e-9)
	assert.Positive(t, meta.SizeBytes)
}

func TestLoadImage_Failures(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a png"), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(dir, "missing.png")},
		{"unsupported extension", filepath.Join(dir, "page.gif")},
		{"corrupt content", corrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadImage(tt.path)
			require.Error(t, err)

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
		})
	}
}

func TestSavePNG_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.png")

	err := SavePNG(path, image.NewGray(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestToGray(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := range 10 {
		for x := range 10 {
			img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	gray := ToGray(img)

	require.Equal(t, 10, gray.Bounds().Dx())
	for _, v := range gray.Pix {
		assert.Equal(t, uint8(255), v)
	}
}

func TestCloneGray_SubImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range g.Pix {
		g.Pix[i] = uint8(i)
	}
	sub, ok := g.SubImage(image.Rect(2, 3, 7, 8)).(*image.Gray)
	require.True(t, ok)

	clone := CloneGray(sub)

	require.Equal(t, 5, clone.Bounds().Dx())
	assert.Equal(t, sub.GrayAt(2, 3).Y, clone.GrayAt(clone.Bounds().Min.X, clone.Bounds().Min.Y).Y)
}

func TestHistogram(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	g.Pix[0] = 200
	g.Pix[1] = 200

	hist := Histogram(g)

	assert.Equal(t, 14, hist[0])
	assert.Equal(t, 2, hist[200])
}

func TestStageTimer(t *testing.T) {
	timer := NewStageTimer()
	time.Sleep(time.Millisecond)
	d1 := timer.Mark("first")
	d2 := timer.Mark("second")

	assert.Positive(t, d1)
	assert.GreaterOrEqual(t, d1, d2)
	require.Len(t, timer.Stages(), 2)
	assert.Equal(t, "first", timer.Stages()[0].Name)
	assert.Equal(t, timer.Total(), d1+d2)
	assert.Len(t, timer.Attrs(), 4)
}
