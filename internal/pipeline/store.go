package pipeline

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/foliocr/folio/internal/utils"
)

// Store persists preprocessed page images for diagnostics, keyed by a
// caller-supplied identifier (typically the page filename).
type Store interface {
	Save(id string, img image.Image) error
}

// DirStore writes preprocessed images as PNG files into a directory, named
// <stem>_preprocessed.png after the source file.
type DirStore struct {
	Dir string
}

// Save implements Store.
func (s DirStore) Save(id string, img image.Image) error {
	stem := strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
	if stem == "" {
		return fmt.Errorf("empty identifier")
	}
	path := filepath.Join(s.Dir, stem+"_preprocessed.png")
	return utils.SavePNG(path, img)
}
