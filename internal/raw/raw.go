// Package raw loads headerless pixel dumps, such as a frame buffer written
// straight to disk by a capture tool, into a PixelBuffer.
package raw

import (
	"fmt"
	"os"
	"strings"

	"github.com/rm-hull/pixconv/internal/pixbuf"
)

// Order is the sample order of a 3-channel capture.
type Order int

const (
	RGB Order = iota
	BGR
)

func (o Order) String() string {
	if o == BGR {
		return "bgr"
	}
	return "rgb"
}

func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "rgb":
		return RGB, nil
	case "bgr":
		return BGR, nil
	}
	return RGB, fmt.Errorf("unknown data format: %q (expected rgb or bgr)", s)
}

// Layout describes where the pixels are in a capture and how they are packed.
type Layout struct {
	Width    int
	Height   int
	Offset   int
	Channels int
	BitDepth int
	Order    Order
}

// DefaultLayout is a 1280x720 8-bit RGB frame starting at byte 0.
func DefaultLayout() Layout {
	return Layout{
		Width:    1280,
		Height:   720,
		Offset:   0,
		Channels: 3,
		BitDepth: 8,
		Order:    RGB,
	}
}

// Validate checks the layout without looking at any data.
func (l Layout) Validate() error {
	if l.Offset < 0 {
		return fmt.Errorf("%w: negative data offset %d", pixbuf.ErrInvalidFormat, l.Offset)
	}
	if _, err := pixbuf.Size(l.Width, l.Height, l.Channels, l.BitDepth); err != nil {
		return err
	}
	if l.Order == BGR && (l.Channels != 3 || l.BitDepth != 8) {
		return fmt.Errorf("%w: bgr order needs 3 channels at 8-bit", pixbuf.ErrUnsupportedFormat)
	}
	return nil
}

// Decode copies the pixels described by l out of data. BGR captures are
// converted to RGB.
func Decode(data []byte, l Layout) (*pixbuf.PixelBuffer, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	// The layout usually comes from the caller, not the data, so check it
	// fits before allocating the frame.
	need, err := pixbuf.Size(l.Width, l.Height, l.Channels, l.BitDepth)
	if err != nil {
		return nil, err
	}
	if l.Offset > len(data) || len(data)-l.Offset < need {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", pixbuf.ErrInsufficientData, need, l.Offset, len(data))
	}

	b, err := pixbuf.New(l.Width, l.Height, l.Channels, l.BitDepth)
	if err != nil {
		return nil, err
	}
	copy(b.Data(), data[l.Offset:l.Offset+need])

	if l.Order == BGR {
		if err := pixbuf.SwapRedBlue(b.Data(), b.Width(), b.Height()); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Load reads a capture from path.
func Load(path string, l Layout) (*pixbuf.PixelBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pixbuf.IOError("read "+path, err)
	}
	b, err := Decode(data, l)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return b, nil
}
