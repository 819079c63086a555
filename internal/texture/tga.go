package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA image")
)

// TGA image type constants.
const (
	TGATypeUncompressed      = 2  // Uncompressed true-color
	TGATypeGrey              = 3  // Uncompressed greyscale
	TGATypeRLE               = 10 // RLE compressed true-color
	TGATypeRLEGrey           = 11 // RLE compressed greyscale
	tgaHeaderSize            = 18
	tgaDescriptorTopToBottom = 0x20
)

// TGAHeader is the fixed 18-byte TGA header.
type TGAHeader struct {
	IDLength     int
	ColorMapType uint8
	ImageType    uint8
	Width        int
	Height       int
	BitsPerPixel int
	TopToBottom  bool
}

// Components returns the number of channels per pixel.
func (h TGAHeader) Components() int {
	return h.BitsPerPixel / 8
}

// ParseTGAHeader reads and checks a TGA header. TGA has no magic number, so
// this is the only way to tell a TGA from arbitrary bytes.
func ParseTGAHeader(data []byte) (TGAHeader, error) {
	if len(data) < tgaHeaderSize {
		return TGAHeader{}, ErrTGATruncated
	}

	h := TGAHeader{
		IDLength:     int(data[0]),
		ColorMapType: data[1],
		ImageType:    data[2],
		// colorMapSpec: bytes 3-7
		// imageSpec: bytes 8-17, origin at 8-11
		Width:        int(data[12]) | int(data[13])<<8,
		Height:       int(data[14]) | int(data[15])<<8,
		BitsPerPixel: int(data[16]),
		TopToBottom:  data[17]&tgaDescriptorTopToBottom != 0,
	}

	// Check supported formats
	if h.ColorMapType != 0 {
		return h, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	switch h.ImageType {
	case TGATypeUncompressed, TGATypeRLE:
		if h.BitsPerPixel != 24 && h.BitsPerPixel != 32 {
			return h, fmt.Errorf("%w: true-color bit depth %d", ErrTGAUnsupported, h.BitsPerPixel)
		}
	case TGATypeGrey, TGATypeRLEGrey:
		if h.BitsPerPixel != 8 {
			return h, fmt.Errorf("%w: greyscale bit depth %d", ErrTGAUnsupported, h.BitsPerPixel)
		}
	default:
		return h, fmt.Errorf("%w: type %d", ErrTGAUnsupported, h.ImageType)
	}
	if h.Width == 0 || h.Height == 0 {
		return h, fmt.Errorf("%w: empty image %dx%d", ErrTGAUnsupported, h.Width, h.Height)
	}
	if tgaHeaderSize+h.IDLength > len(data) {
		return h, ErrTGATruncated
	}
	return h, nil
}

// DecodeTGAConfig returns the dimensions and color model of a TGA image
// without decoding its pixels, in the shape of image.DecodeConfig.
func DecodeTGAConfig(data []byte) (image.Config, error) {
	_, cfg, err := decodeTGAConfig(data)
	return cfg, err
}

// decodeTGAConfig also returns the header, whose bit depth tells RGB from
// RGBA where the color model cannot.
func decodeTGAConfig(data []byte) (TGAHeader, image.Config, error) {
	h, err := ParseTGAHeader(data)
	if err != nil {
		return h, image.Config{}, err
	}

	var model color.Model = color.RGBAModel
	if h.BitsPerPixel == 8 {
		model = color.GrayModel
	}

	// Uncompressed data has a known size; RLE data is only checked on decode.
	if h.ImageType == TGATypeUncompressed || h.ImageType == TGATypeGrey {
		need := tgaHeaderSize + h.IDLength + h.Width*h.Height*h.Components()
		if len(data) < need {
			return h, image.Config{}, ErrTGATruncated
		}
	}

	return h, image.Config{ColorModel: model, Width: h.Width, Height: h.Height}, nil
}
