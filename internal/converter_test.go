package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rm-hull/pixconv/internal/config"
	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/png/stage"
	"github.com/rm-hull/pixconv/internal/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallLayout = raw.Layout{Width: 2, Height: 2, Channels: 3, BitDepth: 8, Order: raw.BGR}

func writeRaw(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i + 1)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestConverter(t *testing.T) {
	t.Run("converts every match", func(t *testing.T) {
		dir := t.TempDir()
		a := writeRaw(t, dir, "a.raw", 12)
		b := writeRaw(t, dir, "b.raw", 12)
		writeRaw(t, dir, "ignored.txt", 12)

		conv, err := NewConverter(dir, "*.raw", 2, smallLayout, png.EncodeOptions{})
		require.NoError(t, err)
		assert.Empty(t, conv.Run())

		for _, f := range []string{a, b} {
			buf, err := png.DecodeFile(OutputName(f))
			require.NoError(t, err)
			assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, buf.Data()[:6], "bgr capture is stored as rgb")
		}
		_, err = os.Stat(filepath.Join(dir, "ignored.txt.png"))
		assert.True(t, os.IsNotExist(err))

		tmps, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
		assert.Empty(t, tmps)
	})

	t.Run("skips existing output", func(t *testing.T) {
		dir := t.TempDir()
		a := writeRaw(t, dir, "a.raw", 12)
		require.NoError(t, os.WriteFile(OutputName(a), []byte("keep me"), 0o644))

		conv, err := NewConverter(dir, "*", 1, smallLayout, png.EncodeOptions{})
		require.NoError(t, err)
		assert.Empty(t, conv.Run())

		data, err := os.ReadFile(OutputName(a))
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(data))
	})

	t.Run("collects failures", func(t *testing.T) {
		dir := t.TempDir()
		writeRaw(t, dir, "short.raw", 5)
		good := writeRaw(t, dir, "good.raw", 12)

		conv, err := NewConverter(dir, "*.raw", 3, smallLayout, png.EncodeOptions{})
		require.NoError(t, err)
		errs := conv.Run()
		assert.Len(t, errs, 1)
		assert.FileExists(t, OutputName(good))
	})

	t.Run("applies stages", func(t *testing.T) {
		dir := t.TempDir()
		a := writeRaw(t, dir, "a.raw", 12)

		conv, err := NewFileConverter([]string{a}, 1, smallLayout, png.EncodeOptions{}, &stage.ExpandStage{})
		require.NoError(t, err)
		assert.Empty(t, conv.Run())

		buf, err := png.DecodeFile(OutputName(a))
		require.NoError(t, err)
		assert.Equal(t, 4, buf.Channels())
	})

	t.Run("rejects bad settings", func(t *testing.T) {
		_, err := NewConverter(t.TempDir(), "*", 0, smallLayout, png.EncodeOptions{})
		assert.Error(t, err)
		_, err = NewConverter(t.TempDir(), "*", 1, raw.Layout{}, png.EncodeOptions{})
		assert.Error(t, err)
	})
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	a := writeRaw(t, dir, "frame.raw", 4*2*3)

	cfg := config.Default()
	cfg.Inbox = dir
	cfg.Width, cfg.Height = 4, 2
	assert.Empty(t, Sweep(cfg))
	assert.FileExists(t, OutputName(a))

	cfg.Format = "cmyk"
	assert.Len(t, Sweep(cfg), 1)
}

func TestEnvironLines(t *testing.T) {
	environ := []string{
		"PIXCONV_WIDTH=640",
		"HOME=/root",
		"PIXCONV_API_KEY=hunter2",
		"PIXCONV_FORMAT=bgr",
	}
	assert.Equal(t, []string{
		"  PIXCONV_API_KEY: ********",
		"  PIXCONV_FORMAT: bgr",
		"  PIXCONV_WIDTH: 640",
	}, environLines(environ, "PIXCONV_"))
}
