package pixbuf

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ToImage copies the buffer into an image.Image so it can be handed to the
// general-purpose imaging libraries. 8-bit buffers become *image.NRGBA and
// 16-bit buffers *image.NRGBA64; a 3-channel source is given an opaque alpha.
func ToImage(b *PixelBuffer) image.Image {
	rect := image.Rect(0, 0, b.width, b.height)
	pixels := b.width * b.height
	bps := b.bitDepth / 8

	if b.bitDepth == 16 {
		img := image.NewNRGBA64(rect)
		fill(img.Pix, b.data, pixels, b.channels, bps)
		return img
	}

	img := image.NewNRGBA(rect)
	fill(img.Pix, b.data, pixels, b.channels, bps)
	return img
}

func fill(dst, src []byte, pixels, channels, bps int) {
	if channels == 4 {
		copy(dst, src)
		return
	}
	for i := 0; i < pixels; i++ {
		copy(dst[i*4*bps:i*4*bps+3*bps], src[i*3*bps:(i+1)*3*bps])
		for k := 3 * bps; k < 4*bps; k++ {
			dst[i*4*bps+k] = 0xff
		}
	}
}

// FromImage converts any image to an 8-bit buffer with the requested number
// of channels. Colours are un-premultiplied on the way through.
func FromImage(img image.Image, channels int) (*PixelBuffer, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != bounds.Dx()*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	b, err := New(bounds.Dx(), bounds.Dy(), 4, 8)
	if err != nil {
		return nil, err
	}
	copy(b.data, nrgba.Pix)
	if channels == 3 {
		if err := StripAlpha(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}
