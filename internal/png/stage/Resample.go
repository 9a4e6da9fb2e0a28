package stage

import (
	"image"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
	"golang.org/x/image/draw"
)

type ResampleStage struct {
	Width  int
	Height int
}

// Process scales the image to Width x Height with Catmull-Rom resampling.
// A zero dimension keeps the current size, so with neither set the stage
// just smooths out artifacts left by earlier stages.
func (s *ResampleStage) Process(p *png.Image) error {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = p.Buf.Width()
	}
	if h <= 0 {
		h = p.Buf.Height()
	}

	src := pixbuf.ToImage(p.Buf)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	b, err := pixbuf.FromImage(dst, p.Buf.Channels())
	if err != nil {
		return err
	}
	p.Buf = b
	return nil
}
