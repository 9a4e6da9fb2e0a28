package stage

import (
	"fmt"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

type GreyscaleStage struct{}

// Process replaces each pixel's colour with its luminance, leaving any alpha
// channel as it was. The buffer keeps its channel count.
func (s *GreyscaleStage) Process(p *png.Image) error {
	b := p.Buf
	if b.BitDepth() != 8 {
		return fmt.Errorf("%w: greyscale needs 8-bit samples, got %d-bit", pixbuf.ErrUnsupportedFormat, b.BitDepth())
	}
	c := b.Channels()
	data := b.Data()
	for i := 0; i+2 < len(data); i += c {
		// Reference: https://en.wikipedia.org/wiki/Grayscale#Luma_coding_in_video_systems
		lum := uint8(0.299*float64(data[i]) + 0.587*float64(data[i+1]) + 0.114*float64(data[i+2]))
		data[i], data[i+1], data[i+2] = lum, lum, lum
	}
	return nil
}
