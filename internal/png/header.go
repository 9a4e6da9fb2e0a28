package png

import (
	"encoding/binary"
	"fmt"

	"github.com/rm-hull/pixconv/internal/pixbuf"
)

// ColorType is the IHDR colour type byte.
type ColorType uint8

const (
	ColorGray      ColorType = 0
	ColorRGB       ColorType = 2
	ColorIndexed   ColorType = 3
	ColorGrayAlpha ColorType = 4
	ColorRGBA      ColorType = 6
)

func (c ColorType) String() string {
	switch c {
	case ColorGray:
		return "gray"
	case ColorRGB:
		return "rgb"
	case ColorIndexed:
		return "indexed"
	case ColorGrayAlpha:
		return "gray+alpha"
	case ColorRGBA:
		return "rgba"
	}
	return "unknown"
}

// Header is the decoded IHDR chunk.
type Header struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType ColorType
	Interlace uint8
}

const ihdrLength = 13

// Channels is the sample count per pixel, or 0 for colour types this
// package does not decode.
func (h Header) Channels() int {
	switch h.ColorType {
	case ColorRGB:
		return 3
	case ColorRGBA:
		return 4
	}
	return 0
}

func (h Header) RowBytes() int {
	return h.Width * h.Channels() * (h.BitDepth / 8)
}

// parseHeader decodes the IHDR payload, rejecting only structural problems.
func parseHeader(p []byte) (Header, error) {
	if len(p) != ihdrLength {
		return Header{}, fmt.Errorf("%w: bad IHDR length %d", pixbuf.ErrInvalidFormat, len(p))
	}
	w := binary.BigEndian.Uint32(p[0:4])
	h := binary.BigEndian.Uint32(p[4:8])
	if w == 0 || h == 0 || w > 0x7fffffff || h > 0x7fffffff {
		return Header{}, fmt.Errorf("%w: bad dimension %dx%d", pixbuf.ErrInvalidFormat, w, h)
	}
	if p[10] != 0 {
		return Header{}, fmt.Errorf("%w: compression method %d", pixbuf.ErrInvalidFormat, p[10])
	}
	if p[11] != 0 {
		return Header{}, fmt.Errorf("%w: filter method %d", pixbuf.ErrInvalidFormat, p[11])
	}
	return Header{
		Width:     int(w),
		Height:    int(h),
		BitDepth:  int(p[8]),
		ColorType: ColorType(p[9]),
		Interlace: p[12],
	}, nil
}

func (h Header) marshal() []byte {
	p := make([]byte, ihdrLength)
	binary.BigEndian.PutUint32(p[0:4], uint32(h.Width))
	binary.BigEndian.PutUint32(p[4:8], uint32(h.Height))
	p[8] = byte(h.BitDepth)
	p[9] = byte(h.ColorType)
	p[12] = h.Interlace
	return p
}

// Supported reports whether the decoder can produce a PixelBuffer for h.
func (h Header) Supported() error {
	if h.ColorType != ColorRGB && h.ColorType != ColorRGBA {
		return fmt.Errorf("%w: color type %d (%s)", pixbuf.ErrUnsupportedFormat, h.ColorType, h.ColorType)
	}
	if h.BitDepth != 8 && h.BitDepth != 16 {
		return fmt.Errorf("%w: bit depth %d", pixbuf.ErrUnsupportedFormat, h.BitDepth)
	}
	if h.Interlace != 0 {
		return fmt.Errorf("%w: interlace method %d", pixbuf.ErrUnsupportedFormat, h.Interlace)
	}
	return nil
}
