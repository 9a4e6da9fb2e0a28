package stage

import (
	"fmt"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

// SwapRedBlueStage converts between RGB and BGR sample order.
type SwapRedBlueStage struct{}

func (s *SwapRedBlueStage) Process(p *png.Image) error {
	b := p.Buf
	if b.Channels() != 3 || b.BitDepth() != 8 {
		return fmt.Errorf("%w: red/blue swap needs 8-bit RGB, got %s", pixbuf.ErrUnsupportedFormat, b)
	}
	return pixbuf.SwapRedBlue(b.Data(), b.Width(), b.Height())
}
