// Package ppm writes pixel buffers as Netpbm portable pixmaps, either P6
// (binary) or P3 (plain text), with or without the header.
package ppm

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rm-hull/pixconv/internal/pixbuf"
)

type Options struct {
	// Headerless omits the magic, dimensions and maxval lines.
	Headerless bool
	// Binary selects P6; otherwise P3 with one "r g b" line per pixel.
	Binary bool
}

const maxval = 255

// Write serializes an 8-bit RGB buffer to w.
func Write(w io.Writer, b *pixbuf.PixelBuffer, opts Options) error {
	if b.Channels() != 3 || b.BitDepth() != 8 {
		return fmt.Errorf("%w: ppm needs 8-bit RGB, got %s", pixbuf.ErrUnsupportedFormat, b)
	}

	if !opts.Headerless {
		if err := writeAll(w, Header(b.Width(), b.Height(), opts.Binary)); err != nil {
			return err
		}
	}

	if opts.Binary {
		return writeAll(w, b.Data())
	}
	return writeAll(w, asciiBody(b.Data()))
}

// WriteFile creates path and writes the pixmap into it.
func WriteFile(path string, b *pixbuf.PixelBuffer, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return pixbuf.IOError("create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = pixbuf.IOError("close "+path, cerr)
		}
	}()

	if err := Write(f, b, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Header returns the three header lines, e.g. "P6\n640 480\n255\n".
func Header(width, height int, binary bool) []byte {
	magic := "P3"
	if binary {
		magic = "P6"
	}
	return []byte(fmt.Sprintf("%s\n%d %d\n%d\n", magic, width, height, maxval))
}

func asciiBody(data []byte) []byte {
	out := make([]byte, 0, len(data)*4)
	for i := 0; i+2 < len(data); i += 3 {
		out = strconv.AppendInt(out, int64(data[i]), 10)
		out = append(out, ' ')
		out = strconv.AppendInt(out, int64(data[i+1]), 10)
		out = append(out, ' ')
		out = strconv.AppendInt(out, int64(data[i+2]), 10)
		out = append(out, '\n')
	}
	return out
}

func writeAll(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return pixbuf.IOError(fmt.Sprintf("incomplete write: %d/%d bytes", n, len(p)), err)
	}
	return nil
}
