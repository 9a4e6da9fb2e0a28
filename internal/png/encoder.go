package png

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"
	"github.com/rm-hull/pixconv/internal/pixbuf"
)

type CompressionLevel int

const (
	DefaultCompression CompressionLevel = 0
	NoCompression      CompressionLevel = -1
	BestSpeed          CompressionLevel = -2
	BestCompression    CompressionLevel = -3
)

func (l CompressionLevel) zlibLevel() int {
	switch l {
	case NoCompression:
		return zlib.NoCompression
	case BestSpeed:
		return zlib.BestSpeed
	case BestCompression:
		return zlib.BestCompression
	}
	return zlib.DefaultCompression
}

// ParseCompressionLevel accepts "default", "none", "speed" and "best".
func ParseCompressionLevel(s string) (CompressionLevel, error) {
	switch s {
	case "", "default":
		return DefaultCompression, nil
	case "none":
		return NoCompression, nil
	case "speed":
		return BestSpeed, nil
	case "best":
		return BestCompression, nil
	}
	return DefaultCompression, fmt.Errorf("unknown compression level: %q", s)
}

type FilterStrategy int

const (
	// FilterAdaptive picks a filter per row by minimum sum of absolute residuals.
	FilterAdaptive FilterStrategy = iota
	FilterNone
)

type EncodeOptions struct {
	CompressionLevel CompressionLevel
	Filter           FilterStrategy
}

const idatBufferSize = 1 << 15

// Encode writes data as a PNG to w. A channel count of 3 produces an RGB
// image; any other value is treated as RGBA, and data must then hold four
// samples per pixel. Rows are read straight out of data without copying.
func Encode(w io.Writer, data []byte, width, height, channels, depth int, opts EncodeOptions) error {
	ct, ch := ColorRGBA, 4
	if channels == 3 {
		ct, ch = ColorRGB, 3
	}

	h := Header{Width: width, Height: height, BitDepth: depth, ColorType: ct}
	if err := writeHeader(w, h); err != nil {
		return encodeError(pixbuf.PhaseHeader, err)
	}

	rowBytes := width * ch * depth / 8
	rows, err := pixbuf.RowView(data, rowBytes, height)
	if err != nil {
		return encodeError(pixbuf.PhaseBody, err)
	}

	bw := bufio.NewWriterSize(chunkWriter{w: w, typ: "IDAT"}, idatBufferSize)
	zw, err := zlib.NewWriterLevel(bw, opts.CompressionLevel.zlibLevel())
	if err != nil {
		return encodeError(pixbuf.PhaseBody, err)
	}
	if err := writeRows(zw, rows, ch*depth/8, opts.Filter); err != nil {
		return encodeError(pixbuf.PhaseBody, err)
	}

	if err := zw.Close(); err != nil {
		return encodeError(pixbuf.PhaseFinalize, err)
	}
	if err := bw.Flush(); err != nil {
		return encodeError(pixbuf.PhaseFinalize, err)
	}
	if err := writeChunk(w, "IEND", nil); err != nil {
		return encodeError(pixbuf.PhaseFinalize, err)
	}
	return nil
}

// EncodeBuffer encodes a whole PixelBuffer.
func EncodeBuffer(w io.Writer, b *pixbuf.PixelBuffer, opts EncodeOptions) error {
	return Encode(w, b.Data(), b.Width(), b.Height(), b.Channels(), b.BitDepth(), opts)
}

// EncodeFile creates (or truncates) path and encodes into it. On failure a
// partially written file may be left behind.
func EncodeFile(path string, data []byte, width, height, channels, depth int, opts EncodeOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &pixbuf.PhaseError{Op: "encode", Phase: pixbuf.PhaseOpen, Path: path, Err: pixbuf.IOError("create", err)}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &pixbuf.PhaseError{Op: "encode", Phase: pixbuf.PhaseFinalize, Path: path, Err: pixbuf.IOError("close", cerr)}
		}
	}()

	if err := Encode(f, data, width, height, channels, depth, opts); err != nil {
		return withPath(err, path)
	}
	return nil
}

func writeHeader(w io.Writer, h Header) error {
	if h.Width <= 0 || h.Height <= 0 || h.Width > 0x7fffffff || h.Height > 0x7fffffff {
		return fmt.Errorf("%w: bad dimension %dx%d", pixbuf.ErrInvalidFormat, h.Width, h.Height)
	}
	if h.BitDepth != 8 && h.BitDepth != 16 {
		return fmt.Errorf("%w: bit depth %d", pixbuf.ErrUnsupportedFormat, h.BitDepth)
	}
	if err := writeAll(w, []byte(pngSignature)); err != nil {
		return err
	}
	return writeChunk(w, "IHDR", h.marshal())
}

func writeRows(w io.Writer, rows [][]byte, bpp int, strategy FilterStrategy) error {
	rowBytes := len(rows[0])
	prev := make([]byte, rowBytes)
	out := make([]byte, 1+rowBytes)

	var scratch [][]byte
	if strategy == FilterAdaptive {
		scratch = make([][]byte, nFilter)
		for i := range scratch {
			scratch[i] = make([]byte, rowBytes)
		}
	}

	for _, row := range rows {
		if strategy == FilterAdaptive {
			ft, residuals := chooseFilter(scratch, row, prev, bpp)
			out[0] = ft
			copy(out[1:], residuals)
		} else {
			out[0] = ftNone
			copy(out[1:], row)
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
		prev = row
	}
	return nil
}

func encodeError(phase pixbuf.Phase, err error) error {
	return &pixbuf.PhaseError{Op: "encode", Phase: phase, Err: err}
}
