// Package pixbuf holds the in-memory pixel buffer shared by the codecs, and the
// buffer-level transforms applied between decoding and encoding.
package pixbuf

import (
	"fmt"
)

// PixelBuffer is an owned, row-major, interleaved sample buffer. The
// dimensions, channel count, bit depth and data length only ever change
// together, which is why the fields are not exported.
type PixelBuffer struct {
	width    int
	height   int
	channels int
	bitDepth int
	data     []byte
}

// New allocates a zeroed buffer.
func New(width, height, channels, bitDepth int) (*PixelBuffer, error) {
	size, err := Size(width, height, channels, bitDepth)
	if err != nil {
		return nil, err
	}
	return &PixelBuffer{
		width:    width,
		height:   height,
		channels: channels,
		bitDepth: bitDepth,
		data:     make([]byte, size),
	}, nil
}

// Wrap takes ownership of data, which must be exactly the size implied by the
// other arguments.
func Wrap(width, height, channels, bitDepth int, data []byte) (*PixelBuffer, error) {
	size, err := Size(width, height, channels, bitDepth)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: expected %d bytes for %dx%dx%d@%d, got %d",
			ErrInsufficientData, size, width, height, channels, bitDepth, len(data))
	}
	return &PixelBuffer{
		width:    width,
		height:   height,
		channels: channels,
		bitDepth: bitDepth,
		data:     data,
	}, nil
}

// Size returns the byte length of a buffer with the given shape.
func Size(width, height, channels, bitDepth int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: non-positive dimension %dx%d", ErrInvalidFormat, width, height)
	}
	if channels != 3 && channels != 4 {
		return 0, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	if bitDepth != 8 && bitDepth != 16 {
		return 0, fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
	rowBytes := int64(width) * int64(channels) * int64(bitDepth/8)
	total := rowBytes * int64(height)
	if total != int64(int(total)) || total > maxBufferBytes {
		return 0, fmt.Errorf("%w: dimension overflow %dx%d", ErrUnsupportedFormat, width, height)
	}
	return int(total), nil
}

const maxBufferBytes = 1 << 34

func (b *PixelBuffer) Width() int    { return b.width }
func (b *PixelBuffer) Height() int   { return b.height }
func (b *PixelBuffer) Channels() int { return b.channels }
func (b *PixelBuffer) BitDepth() int { return b.bitDepth }

// Data exposes the samples. Callers may edit bytes in place but must not
// retain the slice across a transform, which replaces it.
func (b *PixelBuffer) Data() []byte { return b.data }

// RowBytes is the length of one scanline.
func (b *PixelBuffer) RowBytes() int {
	return b.width * b.channels * (b.bitDepth / 8)
}

// Rows returns a view of every scanline.
func (b *PixelBuffer) Rows() [][]byte {
	rows, _ := RowView(b.data, b.RowBytes(), b.height)
	return rows
}

func (b *PixelBuffer) String() string {
	return fmt.Sprintf("%dx%d, %d channels, %d-bit", b.width, b.height, b.channels, b.bitDepth)
}

// replace swaps in a new layout; the caller has already sized data for it.
func (b *PixelBuffer) replace(channels, bitDepth int, data []byte) {
	b.channels = channels
	b.bitDepth = bitDepth
	b.data = data
}

// RowView slices data into height scanlines of rowBytes each, without copying.
// The bound is checked once here rather than on every row access.
func RowView(data []byte, rowBytes, height int) ([][]byte, error) {
	if rowBytes <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: row view of %d rows x %d bytes", ErrInvalidFormat, height, rowBytes)
	}
	need := int64(rowBytes) * int64(height)
	if need > int64(len(data)) {
		return nil, fmt.Errorf("%w: need %d bytes for %d rows, have %d", ErrInsufficientData, need, height, len(data))
	}
	rows := make([][]byte, height)
	for i := range rows {
		start := i * rowBytes
		end := start + rowBytes
		rows[i] = data[start:end:end]
	}
	return rows, nil
}
