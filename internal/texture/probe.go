// Package texture inspects texture files referenced by materials: format,
// dimensions, channel count and whether the size suits mipmapping.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// ErrUnsupportedFormat is returned for data that is not a known image type.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// Info describes a texture without its pixels.
type Info struct {
	Format     string // png, jpeg, gif, bmp, tiff, webp or tga
	Width      int
	Height     int
	Components int
	PowerOfTwo bool
}

// Probe identifies a texture and reads its dimensions. The name is only used
// to recognise TGA files, which carry no signature.
func Probe(data []byte, name string) (Info, error) {
	kind, _ := filetype.Match(data)
	if kind == filetype.Unknown || !filetype.IsImage(data) {
		if strings.EqualFold(filepath.Ext(name), ".tga") {
			h, cfg, err := decodeTGAConfig(data)
			if err != nil {
				return Info{}, fmt.Errorf("probing %s: %w", name, err)
			}
			info := newInfo("tga", cfg)
			info.Components = h.Components()
			return info, nil
		}
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, name, kind.MIME.Value)
		}
		return Info{}, fmt.Errorf("probing %s: %w", name, err)
	}
	return newInfo(format, cfg), nil
}

func newInfo(format string, cfg image.Config) Info {
	return Info{
		Format:     format,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Components: components(cfg.ColorModel),
		PowerOfTwo: IsPowerOfTwo(cfg.Width) && IsPowerOfTwo(cfg.Height),
	}
}

// components maps a color model to a channel count.
func components(m color.Model) int {
	if _, ok := m.(color.Palette); ok {
		return 4
	}
	switch m {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return 4
	case color.YCbCrModel, color.CMYKModel:
		return 3
	}
	return 3
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
