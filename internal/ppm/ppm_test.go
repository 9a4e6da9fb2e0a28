package ppm

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/jbuchbinder/gopnm"
	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limitedWriter accepts at most n bytes and then fails.
type limitedWriter struct {
	n int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		n := w.n
		w.n = 0
		return n, errors.New("disk full")
	}
	w.n -= len(p)
	return len(p), nil
}

func twoPixels(t *testing.T) *pixbuf.PixelBuffer {
	t.Helper()
	b, err := pixbuf.Wrap(2, 1, 3, 8, []byte{10, 20, 30, 40, 50, 60})
	require.NoError(t, err)
	return b
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"binary", Options{Binary: true}, "P6\n2 1\n255\n\x0a\x14\x1e\x28\x32\x3c"},
		{"ascii", Options{}, "P3\n2 1\n255\n10 20 30\n40 50 60\n"},
		{"headerless binary", Options{Binary: true, Headerless: true}, "\x0a\x14\x1e\x28\x32\x3c"},
		{"headerless ascii", Options{Headerless: true}, "10 20 30\n40 50 60\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, twoPixels(t), tt.opts)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteRejectsOtherLayouts(t *testing.T) {
	b, err := pixbuf.New(2, 2, 4, 8)
	require.NoError(t, err)
	err = Write(&bytes.Buffer{}, b, Options{Binary: true})
	assert.ErrorIs(t, err, pixbuf.ErrUnsupportedFormat)
}

func TestShortWrite(t *testing.T) {
	err := Write(&limitedWriter{n: len("P6\n2 1\n255\n") + 4}, twoPixels(t), Options{Binary: true})
	assert.ErrorIs(t, err, pixbuf.ErrIO)
	assert.ErrorContains(t, err, "incomplete write: 4/6 bytes")
}

func TestOutputDecodes(t *testing.T) {
	b, err := pixbuf.New(5, 3, 3, 8)
	require.NoError(t, err)
	for i := range b.Data() {
		b.Data()[i] = byte(i * 17)
	}

	for _, binary := range []bool{true, false} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, b, Options{Binary: binary}))

		img, _, err := image.Decode(&buf)
		require.NoError(t, err, "binary=%v", binary)
		assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())

		r, g, bl, _ := img.At(1, 0).RGBA()
		assert.Equal(t, uint32(b.Data()[3]), r>>8)
		assert.Equal(t, uint32(b.Data()[4]), g>>8)
		assert.Equal(t, uint32(b.Data()[5]), bl>>8)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ppm")
	require.NoError(t, WriteFile(path, twoPixels(t), Options{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "P3\n2 1\n255\n10 20 30\n40 50 60\n", string(data))

	err = WriteFile(filepath.Join(t.TempDir(), "nope", "out.ppm"), twoPixels(t), Options{})
	assert.ErrorIs(t, err, pixbuf.ErrIO)
}
