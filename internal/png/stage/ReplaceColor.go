package stage

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

type ReplaceColorStage struct {
	Tolerance float64
	Replace   color.Color
}

// Process fades pixels close to Replace into transparency: an exact match
// becomes fully transparent, a pixel at the edge of Tolerance keeps its
// alpha. RGB input is widened to RGBA first.
func (s *ReplaceColorStage) Process(p *png.Image) error {
	if p.Buf.BitDepth() != 8 {
		return fmt.Errorf("%w: replace colour needs 8-bit samples, got %d-bit", pixbuf.ErrUnsupportedFormat, p.Buf.BitDepth())
	}
	if err := pixbuf.ExpandToRGBA(p.Buf); err != nil {
		return err
	}

	replaceR, replaceG, replaceB, _ := s.Replace.RGBA()
	rR, rG, rB := float64(replaceR>>8), float64(replaceG>>8), float64(replaceB>>8)
	data := p.Buf.Data()
	for i := 0; i+3 < len(data); i += 4 {
		R, G, B, A := float64(data[i]), float64(data[i+1]), float64(data[i+2]), float64(data[i+3])
		dist := math.Sqrt((rR-R)*(rR-R) + (rG-G)*(rG-G) + (rB-B)*(rB-B))
		if dist < s.Tolerance {
			data[i+3] = uint8((dist / s.Tolerance) * A)
		}
	}
	return nil
}
