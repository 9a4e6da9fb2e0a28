// Package imgio turns any image format we can read into an 8-bit RGB
// PixelBuffer, ready for the PPM writer.
package imgio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/jbuchbinder/gopnm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
)

const pngMagic = "\x89PNG\r\n\x1a\n"

// Decode reads an image from r and returns it with the name of its format.
// RGB and RGBA PNGs go through our own decoder. Palette, grey and interlaced
// PNGs, and everything else, go through image.Decode.
func Decode(r io.Reader) (*pixbuf.PixelBuffer, string, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(pngMagic))
	if bytes.Equal(magic, []byte(pngMagic)) {
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, "", pixbuf.IOError("read", err)
		}
		b, err := png.DecodeBytes(data)
		if errors.Is(err, pixbuf.ErrUnsupportedFormat) {
			return decodeImage(bytes.NewReader(data))
		}
		if err != nil {
			return nil, "", err
		}
		if err := pixbuf.ToRGB8(b); err != nil {
			return nil, "", err
		}
		return b, "png", nil
	}

	return decodeImage(br)
}

func decodeImage(r io.Reader) (*pixbuf.PixelBuffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", pixbuf.ErrUnsupportedFormat, err)
	}
	b, err := pixbuf.FromImage(img, 3)
	if err != nil {
		return nil, "", err
	}
	return b, format, nil
}

func DecodeFile(path string) (*pixbuf.PixelBuffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", pixbuf.IOError("open "+path, err)
	}
	defer f.Close()

	b, format, err := Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return b, format, nil
}
