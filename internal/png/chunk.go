package png

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/rm-hull/pixconv/internal/pixbuf"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// source is the byte supplier behind a decode: a file or a MemoryStream.
// ReadFull either fills p or fails.
type source interface {
	ReadFull(p []byte) error
}

type readerSource struct {
	r io.Reader
}

func (s readerSource) ReadFull(p []byte) error {
	if _, err := io.ReadFull(s.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: short read of %d bytes", pixbuf.ErrInsufficientData, len(p))
		}
		return pixbuf.IOError("read", err)
	}
	return nil
}

// critical chunks have an upper-case first letter.
func isCritical(typ string) bool {
	return typ[0] >= 'A' && typ[0] <= 'Z'
}

// writeChunk emits length, type, payload and CRC.
func writeChunk(w io.Writer, typ string, payload []byte) error {
	var head [8]byte
	binary.BigEndian.PutUint32(head[:4], uint32(len(payload)))
	copy(head[4:], typ)

	crc := crc32.NewIEEE()
	crc.Write(head[4:8])
	crc.Write(payload)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())

	for _, p := range [][]byte{head[:], payload, tail[:]} {
		if err := writeAll(w, p); err != nil {
			return fmt.Errorf("writing %s chunk: %w", typ, err)
		}
	}
	return nil
}

func writeAll(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		if errors.Is(err, pixbuf.ErrIO) {
			return err
		}
		return pixbuf.IOError(fmt.Sprintf("incomplete write: %d/%d bytes", n, len(p)), err)
	}
	return nil
}

// chunkWriter turns every Write into one chunk of the given type; it sits
// under a bufio.Writer so that IDAT chunks come out at a sensible size.
type chunkWriter struct {
	w   io.Writer
	typ string
}

func (c chunkWriter) Write(p []byte) (int, error) {
	if err := writeChunk(c.w, c.typ, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
