package stage

import (
	"github.com/nfnt/resize"
	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

type ThumbnailStage struct {
	MaxSize uint
}

// Process shrinks the image to fit in a MaxSize square, keeping the aspect
// ratio. Images that already fit are left untouched.
func (s *ThumbnailStage) Process(p *png.Image) error {
	if s.MaxSize == 0 {
		return nil
	}
	if uint(p.Buf.Width()) <= s.MaxSize && uint(p.Buf.Height()) <= s.MaxSize {
		return nil
	}

	thumb := resize.Thumbnail(s.MaxSize, s.MaxSize, pixbuf.ToImage(p.Buf), resize.Lanczos3)
	b, err := pixbuf.FromImage(thumb, p.Buf.Channels())
	if err != nil {
		return err
	}
	p.Buf = b
	return nil
}
