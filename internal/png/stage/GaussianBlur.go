package stage

import (
	"github.com/anthonynsimon/bild/blur"
	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

type GaussianBlurStage struct {
	Sigma float64
}

// Process applies a Gaussian blur with the given Sigma; higher values blur
// more. The channel count is kept but the result is always 8-bit.
func (s *GaussianBlurStage) Process(p *png.Image) error {
	blurred := blur.Gaussian(pixbuf.ToImage(p.Buf), s.Sigma)
	b, err := pixbuf.FromImage(blurred, p.Buf.Channels())
	if err != nil {
		return err
	}
	p.Buf = b
	return nil
}
