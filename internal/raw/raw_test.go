package raw

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("BGR")
	assert.NoError(t, err)
	assert.Equal(t, BGR, o)
	assert.Equal(t, "bgr", o.String())

	_, err = ParseOrder("yuv")
	assert.Error(t, err)
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, 1280, l.Width)
	assert.Equal(t, 720, l.Height)
	assert.Equal(t, 3, l.Channels)
	assert.Equal(t, 8, l.BitDepth)
	assert.Equal(t, RGB, l.Order)
	assert.NoError(t, l.Validate())
}

func TestDecode(t *testing.T) {
	data := []byte{0xaa, 0xbb, 1, 2, 3, 4, 5, 6}
	layout := Layout{Width: 2, Height: 1, Offset: 2, Channels: 3, BitDepth: 8}

	t.Run("rgb with offset", func(t *testing.T) {
		b, err := Decode(data, layout)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, b.Data())
	})

	t.Run("bgr is swapped", func(t *testing.T) {
		l := layout
		l.Order = BGR
		b, err := Decode(data, l)
		require.NoError(t, err)
		assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, b.Data())
		assert.Equal(t, []byte{0xaa, 0xbb, 1, 2, 3, 4, 5, 6}, data, "input must not be touched")
	})

	t.Run("too little data", func(t *testing.T) {
		l := layout
		l.Offset = 3
		_, err := Decode(data, l)
		assert.ErrorIs(t, err, pixbuf.ErrInsufficientData)

		l.Offset = 100
		_, err = Decode(data, l)
		assert.ErrorIs(t, err, pixbuf.ErrInsufficientData)
	})

	t.Run("short capture with a huge layout allocates nothing big", func(t *testing.T) {
		l := Layout{Width: 8000, Height: 8000, Channels: 4, BitDepth: 16}
		var err error
		allocated := bytesAllocated(func() {
			_, err = Decode(make([]byte, 10), l)
		})
		assert.ErrorIs(t, err, pixbuf.ErrInsufficientData)
		assert.Less(t, allocated, uint64(1<<20))
	})

	t.Run("bgr needs 8-bit rgb", func(t *testing.T) {
		l := Layout{Width: 1, Height: 1, Channels: 4, BitDepth: 8, Order: BGR}
		_, err := Decode(make([]byte, 4), l)
		assert.ErrorIs(t, err, pixbuf.ErrUnsupportedFormat)
	})

	t.Run("bad layout", func(t *testing.T) {
		_, err := Decode(data, Layout{Width: 0, Height: 1, Channels: 3, BitDepth: 8})
		assert.ErrorIs(t, err, pixbuf.ErrInvalidFormat)
		_, err = Decode(data, Layout{Width: 1, Height: 1, Offset: -1, Channels: 3, BitDepth: 8})
		assert.ErrorIs(t, err, pixbuf.ErrInvalidFormat)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.raw")
	require.NoError(t, os.WriteFile(path, []byte{9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2}, 0o644))

	b, err := Load(path, Layout{Width: 2, Height: 2, Channels: 3, BitDepth: 8})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Height())

	_, err = Load(filepath.Join(dir, "missing.raw"), DefaultLayout())
	assert.ErrorIs(t, err, pixbuf.ErrIO)
}

func bytesAllocated(f func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	f()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}
