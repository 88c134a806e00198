package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

// Faces creates a font face for one redraw. The caller closes it.
type Faces interface {
	NewFace() (font.Face, error)
}

// FacesFunc adapts a function to Faces.
type FacesFunc func() (font.Face, error)

func (f FacesFunc) NewFace() (font.Face, error) {
	return f()
}

// Font is a parsed OpenType font at a fixed size.
type Font struct {
	font *opentype.Font
	size float64
	dpi  float64
}

// LoadFont parses the font at path, an empty path selects Go Mono Bold.
func LoadFont(path string, size, dpi float64) (*Font, error) {
	data := gomonobold.TTF
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", path, err)
	}

	return &Font{font: f, size: size, dpi: dpi}, nil
}

func (f *Font) NewFace() (font.Face, error) {
	return opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    f.size,
		DPI:     f.dpi,
		Hinting: font.HintingFull,
	})
}
