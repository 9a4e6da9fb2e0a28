package stage

import (
	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

type ExpandStage struct{}

func (s *ExpandStage) Process(p *png.Image) error {
	return pixbuf.ExpandToRGBA(p.Buf)
}

type StripAlphaStage struct{}

func (s *StripAlphaStage) Process(p *png.Image) error {
	return pixbuf.StripAlpha(p.Buf)
}

// ReduceDepthStage narrows 16-bit samples to 8-bit. 8-bit input is left as is.
type ReduceDepthStage struct{}

func (s *ReduceDepthStage) Process(p *png.Image) error {
	return pixbuf.ReduceDepth(p.Buf)
}
