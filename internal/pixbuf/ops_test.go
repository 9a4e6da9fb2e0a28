package pixbuf

import (
	"image"
	"image/color"
	"testing"

	"github.com/anthonynsimon/bild/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequential(t *testing.T, w, h, c int) *PixelBuffer {
	t.Helper()
	b, err := New(w, h, c, 8)
	require.NoError(t, err)
	for i := range b.Data() {
		b.Data()[i] = byte(i*7 + 3)
	}
	return b
}

func clone(b *PixelBuffer) *PixelBuffer {
	data := append([]byte(nil), b.data...)
	return &PixelBuffer{width: b.width, height: b.height, channels: b.channels, bitDepth: b.bitDepth, data: data}
}

func TestNew(t *testing.T) {
	t.Run("allocates exact size", func(t *testing.T) {
		b, err := New(3, 2, 4, 16)
		assert.NoError(t, err)
		assert.Len(t, b.Data(), 3*2*4*2)
		assert.Equal(t, 24, b.RowBytes())
	})

	t.Run("rejects bad shapes", func(t *testing.T) {
		_, err := New(0, 2, 3, 8)
		assert.ErrorIs(t, err, ErrInvalidFormat)
		_, err = New(2, 2, 2, 8)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		_, err = New(2, 2, 3, 4)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("wrap checks length", func(t *testing.T) {
		_, err := Wrap(2, 2, 3, 8, make([]byte, 11))
		assert.ErrorIs(t, err, ErrInsufficientData)
		b, err := Wrap(2, 2, 3, 8, make([]byte, 12))
		assert.NoError(t, err)
		assert.Equal(t, "2x2, 3 channels, 8-bit", b.String())
	})
}

func TestRowView(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7}

	rows, err := RowView(data, 3, 2)
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{{1, 2, 3}, {4, 5, 6}}, rows)
	assert.Equal(t, 3, cap(rows[0]), "rows must not reach into their neighbours")

	_, err = RowView(data, 3, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestExpandToRGBA(t *testing.T) {
	src := sequential(t, 4, 3, 3)
	b := clone(src)

	assert.NoError(t, ExpandToRGBA(b))
	assert.Equal(t, 4, b.Channels())
	assert.Equal(t, 4, b.Width())
	assert.Equal(t, 3, b.Height())
	assert.Len(t, b.Data(), 4*3*4)
	for i := 0; i < 12; i++ {
		assert.Equal(t, src.Data()[i*3:i*3+3], b.Data()[i*4:i*4+3])
		assert.Equal(t, byte(255), b.Data()[i*4+3])
	}

	t.Run("no-op on RGBA", func(t *testing.T) {
		rgba := sequential(t, 2, 2, 4)
		before := clone(rgba)
		assert.NoError(t, ExpandToRGBA(rgba))
		assert.Equal(t, before.Data(), rgba.Data())
	})

	t.Run("rejects 16-bit", func(t *testing.T) {
		deep, err := New(2, 2, 3, 16)
		require.NoError(t, err)
		assert.ErrorIs(t, ExpandToRGBA(deep), ErrUnsupportedFormat)
		assert.Equal(t, 3, deep.Channels())
	})
}

func TestVerticalFlip(t *testing.T) {
	t.Run("RGBA involution", func(t *testing.T) {
		src := sequential(t, 5, 4, 4)
		b := clone(src)
		assert.NoError(t, VerticalFlip(b))
		assert.NotEqual(t, src.Data(), b.Data())
		assert.NoError(t, VerticalFlip(b))
		assert.Equal(t, src.Data(), b.Data())
	})

	t.Run("row 0 lands at the bottom", func(t *testing.T) {
		src := sequential(t, 2, 3, 4)
		b := clone(src)
		assert.NoError(t, VerticalFlip(b))
		assert.Equal(t, src.Rows()[0], b.Rows()[2])
		assert.Equal(t, src.Rows()[1], b.Rows()[1])
		assert.Equal(t, src.Rows()[2], b.Rows()[0])
	})

	t.Run("matches bild FlipV", func(t *testing.T) {
		// bild works on premultiplied RGBA, so keep alpha opaque.
		src := sequential(t, 6, 5, 3)
		require.NoError(t, ExpandToRGBA(src))
		want := transform.FlipV(ToImage(src))
		b := clone(src)
		assert.NoError(t, VerticalFlip(b))
		assert.Equal(t, want.Pix, ToImage(b).(*image.NRGBA).Pix)
	})

	// Flipping an RGB buffer widens it to RGBA. This is long-standing
	// behaviour that callers depend on, so it is pinned here.
	t.Run("RGB input widens to RGBA", func(t *testing.T) {
		src := sequential(t, 3, 2, 3)
		b := clone(src)
		assert.NoError(t, VerticalFlip(b))
		assert.Equal(t, 4, b.Channels())
		assert.NoError(t, VerticalFlip(b))
		assert.Equal(t, 4, b.Channels())
		assert.Len(t, b.Data(), 3*2*4)
		for i := 0; i < 6; i++ {
			assert.Equal(t, src.Data()[i*3:i*3+3], b.Data()[i*4:i*4+3])
			assert.Equal(t, byte(255), b.Data()[i*4+3])
		}
	})
}

func TestSwapRedBlue(t *testing.T) {
	src := sequential(t, 4, 4, 3)
	data := append([]byte(nil), src.Data()...)

	assert.NoError(t, SwapRedBlue(data, 4, 4))
	assert.Equal(t, src.Data()[2], data[0])
	assert.Equal(t, src.Data()[1], data[1])
	assert.Equal(t, src.Data()[0], data[2])

	assert.NoError(t, SwapRedBlue(data, 4, 4))
	assert.Equal(t, src.Data(), data)

	assert.ErrorIs(t, SwapRedBlue(data[:10], 4, 4), ErrInsufficientData)
}

func TestStripAlphaAndReduceDepth(t *testing.T) {
	b, err := Wrap(2, 1, 4, 16, []byte{
		0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	})
	require.NoError(t, err)

	assert.NoError(t, ToRGB8(b))
	assert.Equal(t, 3, b.Channels())
	assert.Equal(t, 8, b.BitDepth())
	assert.Equal(t, []byte{0x12, 0x56, 0x9a, 0x01, 0x03, 0x05}, b.Data())
}

func TestImageBridge(t *testing.T) {
	src := sequential(t, 3, 2, 3)
	img := ToImage(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{src.Data()[0], src.Data()[1], src.Data()[2], 255}, img.At(0, 0))

	back, err := FromImage(img, 3)
	assert.NoError(t, err)
	assert.Equal(t, src.Data(), back.Data())

	offset := image.NewRGBA(image.Rect(10, 10, 12, 11))
	offset.Set(10, 10, color.RGBA{1, 2, 3, 255})
	offset.Set(11, 10, color.RGBA{4, 5, 6, 255})
	b, err := FromImage(offset, 4)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, b.Data())
}
