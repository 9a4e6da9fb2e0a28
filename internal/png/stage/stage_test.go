package stage

import (
	"image/color"
	"testing"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImage(t *testing.T, w, h, c int, px ...byte) *png.Image {
	t.Helper()
	b, err := pixbuf.New(w, h, c, 8)
	require.NoError(t, err)
	data := b.Data()
	for i := range data {
		data[i] = px[i%len(px)]
	}
	return &png.Image{Buf: b}
}

func TestPipeline(t *testing.T) {
	t.Run("runs stages in order", func(t *testing.T) {
		img := newImage(t, 2, 2, 3, 10, 20, 30)
		err := img.Pipeline(&SwapRedBlueStage{}, &ExpandStage{})
		require.NoError(t, err)
		assert.Equal(t, 4, img.Buf.Channels())
		assert.Equal(t, []byte{30, 20, 10, 255}, img.Buf.Data()[:4])
	})

	t.Run("stops at first failure", func(t *testing.T) {
		img := newImage(t, 2, 2, 4, 1, 2, 3, 4)
		err := img.Pipeline(&SwapRedBlueStage{}, &StripAlphaStage{})
		assert.ErrorIs(t, err, pixbuf.ErrUnsupportedFormat)
		assert.Equal(t, 4, img.Buf.Channels())
	})
}

func TestFlipStage(t *testing.T) {
	img := newImage(t, 1, 2, 3, 1, 1, 1, 2, 2, 2)
	require.NoError(t, (&FlipStage{}).Process(img))
	assert.Equal(t, []byte{2, 2, 2, 255, 1, 1, 1, 255}, img.Buf.Data())
}

func TestGreyscaleStage(t *testing.T) {
	img := newImage(t, 1, 1, 4, 255, 0, 0, 99)
	require.NoError(t, (&GreyscaleStage{}).Process(img))
	assert.Equal(t, []byte{76, 76, 76, 99}, img.Buf.Data())
}

func TestReplaceColorStage(t *testing.T) {
	img := newImage(t, 2, 1, 3, 255, 255, 255, 0, 0, 0)
	require.NoError(t, (&ReplaceColorStage{Tolerance: 10, Replace: color.White}).Process(img))
	assert.Equal(t, []byte{255, 255, 255, 0, 0, 0, 0, 255}, img.Buf.Data())
}

func TestGaussianBlurStage(t *testing.T) {
	img := newImage(t, 16, 16, 3, 50, 100, 150)
	require.NoError(t, (&GaussianBlurStage{Sigma: 1.5}).Process(img))
	assert.Equal(t, 3, img.Buf.Channels())
	// A flat image stays flat under a blur.
	centre := (8*16 + 8) * 3
	assert.InDelta(t, 100, int(img.Buf.Data()[centre+1]), 1)
}

func TestResampleStage(t *testing.T) {
	img := newImage(t, 4, 4, 4, 10, 20, 30, 255)
	require.NoError(t, (&ResampleStage{Width: 8}).Process(img))
	assert.Equal(t, 8, img.Buf.Width())
	assert.Equal(t, 4, img.Buf.Height())
	assert.Equal(t, 4, img.Buf.Channels())
}

func TestThumbnailStage(t *testing.T) {
	t.Run("shrinks to fit", func(t *testing.T) {
		img := newImage(t, 40, 20, 3, 1, 2, 3)
		require.NoError(t, (&ThumbnailStage{MaxSize: 10}).Process(img))
		assert.Equal(t, 10, img.Buf.Width())
		assert.Equal(t, 5, img.Buf.Height())
	})

	t.Run("leaves small images alone", func(t *testing.T) {
		img := newImage(t, 4, 4, 3, 1, 2, 3)
		before := img.Buf
		require.NoError(t, (&ThumbnailStage{MaxSize: 10}).Process(img))
		assert.Same(t, before, img.Buf)
	})
}

func TestReduceDepthStage(t *testing.T) {
	b, err := pixbuf.Wrap(1, 1, 3, 16, []byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc})
	require.NoError(t, err)
	img := &png.Image{Buf: b}
	require.NoError(t, img.Pipeline(&ReduceDepthStage{}, &FlipStage{}))
	assert.Equal(t, 8, img.Buf.BitDepth())
	assert.Equal(t, []byte{0x12, 0x56, 0x9a, 255}, img.Buf.Data())
}
