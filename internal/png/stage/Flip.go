package stage

import (
	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

// FlipStage turns the image upside down. Like pixbuf.VerticalFlip it always
// leaves a 4-channel buffer behind.
type FlipStage struct{}

func (s *FlipStage) Process(p *png.Image) error {
	return pixbuf.VerticalFlip(p.Buf)
}
