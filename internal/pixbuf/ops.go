package pixbuf

import "fmt"

const opaque = 255

// ExpandToRGBA widens a 3-channel buffer to 4 channels with a fully opaque
// alpha. Buffers that are not 3-channel are left alone.
func ExpandToRGBA(b *PixelBuffer) error {
	if b.channels != 3 {
		return nil
	}
	if b.bitDepth != 8 {
		return fmt.Errorf("%w: expand to RGBA needs 8-bit samples, got %d-bit", ErrUnsupportedFormat, b.bitDepth)
	}

	pixels := b.width * b.height
	out := make([]byte, pixels*4)
	for i := 0; i < pixels; i++ {
		src := b.data[i*3 : i*3+3]
		dst := out[i*4 : i*4+4]
		dst[0], dst[1], dst[2] = src[0], src[1], src[2]
		dst[3] = opaque
	}
	b.replace(4, b.bitDepth, out)
	return nil
}

// VerticalFlip reverses the scanline order. The result is always laid out as
// 4 channels: a 3-channel source gains an alpha of 255, so flipping twice
// does not give back a 3-channel buffer.
func VerticalFlip(b *PixelBuffer) error {
	if b.bitDepth != 8 {
		return fmt.Errorf("%w: vertical flip needs 8-bit samples, got %d-bit", ErrUnsupportedFormat, b.bitDepth)
	}

	w, h, c := b.width, b.height, b.channels
	out := make([]byte, w*h*4)
	for i := 0; i < h; i++ {
		srcRow := b.data[i*w*c : (i+1)*w*c]
		dstRow := out[(h-1-i)*w*4 : (h-i)*w*4]
		for j := 0; j < w; j++ {
			px := srcRow[j*c : j*c+c]
			dst := dstRow[j*4 : j*4+4]
			dst[0], dst[1], dst[2] = px[0], px[1], px[2]
			if c == 4 {
				dst[3] = px[3]
			} else {
				dst[3] = opaque
			}
		}
	}
	b.replace(4, b.bitDepth, out)
	return nil
}

// SwapRedBlue exchanges the first and third byte of every pixel of a raw
// 3-channel, 8-bit buffer, in place. Applying it twice restores the input.
func SwapRedBlue(data []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: non-positive dimension %dx%d", ErrInvalidFormat, width, height)
	}
	n := width * height * 3
	if len(data) < n {
		return fmt.Errorf("%w: need %d bytes for %dx%d RGB, have %d", ErrInsufficientData, n, width, height, len(data))
	}
	for i := 0; i < n; i += 3 {
		data[i], data[i+2] = data[i+2], data[i]
	}
	return nil
}

// StripAlpha drops the alpha channel of a 4-channel buffer.
func StripAlpha(b *PixelBuffer) error {
	if b.channels != 4 {
		return nil
	}
	bps := b.bitDepth / 8
	pixels := b.width * b.height
	out := make([]byte, pixels*3*bps)
	for i := 0; i < pixels; i++ {
		copy(out[i*3*bps:(i+1)*3*bps], b.data[i*4*bps:i*4*bps+3*bps])
	}
	b.replace(3, b.bitDepth, out)
	return nil
}

// ReduceDepth converts 16-bit samples to 8-bit by keeping the most
// significant byte.
func ReduceDepth(b *PixelBuffer) error {
	if b.bitDepth != 16 {
		return nil
	}
	out := make([]byte, len(b.data)/2)
	for i := range out {
		out[i] = b.data[i*2]
	}
	b.replace(b.channels, 8, out)
	return nil
}

// ToRGB8 normalises any supported buffer to 8-bit, 3-channel.
func ToRGB8(b *PixelBuffer) error {
	if err := ReduceDepth(b); err != nil {
		return err
	}
	return StripAlpha(b)
}
