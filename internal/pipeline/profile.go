package pipeline

import (
	"fmt"

	"github.com/foliocr/folio/internal/binarize"
	"github.com/foliocr/folio/internal/enhance"
	"github.com/foliocr/folio/internal/geometry"
)

// BookType selects the preprocessing profile.
type BookType string

const (
	// BookTypeModern targets recent, well-preserved prints.
	BookTypeModern BookType = "modern"
	// BookTypeAncient targets degraded pages: stains, yellowed paper,
	// uneven illumination.
	BookTypeAncient BookType = "ancient"
)

// Profile is the immutable parameter bundle selected by book type. It is
// chosen once per pipeline and applied uniformly to every page the pipeline
// processes.
type Profile struct {
	Type     BookType
	Geometry geometry.Config
	Enhance  enhance.Config
	Binarize binarize.Config
}

// ModernProfile returns the parameter bundle for modern books: moderate
// global contrast, light denoising, global Otsu binarization.
func ModernProfile() Profile {
	return Profile{
		Type:     BookTypeModern,
		Geometry: geometry.DefaultConfig(),
		Enhance: enhance.Config{
			Contrast:        enhance.ContrastStretch,
			ClipLimit:       1.2,
			TileGrid:        8,
			DenoiseStrength: 10,
			DenoiseRadius:   3,
		},
		Binarize: binarize.Config{
			Method:       binarize.MethodOtsu,
			Window:       11,
			Offset:       2,
			MorphCleanup: false,
			KernelSize:   3,
		},
	}
}

// AncientProfile returns the parameter bundle for ancient books: aggressive
// locally adaptive contrast, strong denoising, adaptive binarization with
// morphological cleanup.
func AncientProfile() Profile {
	return Profile{
		Type:     BookTypeAncient,
		Geometry: geometry.DefaultConfig(),
		Enhance: enhance.Config{
			Contrast:        enhance.ContrastCLAHE,
			ClipLimit:       2.0,
			TileGrid:        8,
			DenoiseStrength: 15,
			DenoiseRadius:   5,
		},
		Binarize: binarize.Config{
			Method:       binarize.MethodAdaptive,
			Window:       11,
			Offset:       2,
			MorphCleanup: true,
			KernelSize:   3,
		},
	}
}

// ProfileFor maps a configured book type to its profile. An unknown type is
// a configuration error, fatal to the whole run: no valid profile can be
// selected.
func ProfileFor(bookType string) (Profile, error) {
	switch BookType(bookType) {
	case BookTypeModern:
		return ModernProfile(), nil
	case BookTypeAncient:
		return AncientProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown book type %q (expected %q or %q)",
			bookType, BookTypeModern, BookTypeAncient)
	}
}
