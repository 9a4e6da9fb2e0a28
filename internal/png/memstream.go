package png

import (
	"fmt"

	"github.com/rm-hull/pixconv/internal/pixbuf"
)

// MemoryStream presents a borrowed byte slice as a forward-only read source.
// Every read is all-or-nothing: it either returns the full amount asked for
// and advances, or fails and leaves the offset where it was.
type MemoryStream struct {
	buf    []byte
	offset int
}

func NewMemoryStream(buf []byte) *MemoryStream {
	return &MemoryStream{buf: buf}
}

// Next returns the next n bytes without copying them.
func (s *MemoryStream) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read of %d bytes", pixbuf.ErrInvalidFormat, n)
	}
	if left := len(s.buf) - s.offset; n > left {
		return nil, fmt.Errorf("%w: cannot read %d bytes (only %d)", pixbuf.ErrInsufficientData, n, left)
	}
	p := s.buf[s.offset : s.offset+n : s.offset+n]
	s.offset += n
	return p, nil
}

// ReadFull fills p entirely from the stream.
func (s *MemoryStream) ReadFull(p []byte) error {
	src, err := s.Next(len(p))
	if err != nil {
		return err
	}
	copy(p, src)
	return nil
}

// Skip advances past n bytes, e.g. a container prefix in front of the PNG.
func (s *MemoryStream) Skip(n int) error {
	_, err := s.Next(n)
	return err
}

func (s *MemoryStream) Offset() int { return s.offset }
func (s *MemoryStream) Size() int   { return len(s.buf) }

// Len is the number of unread bytes.
func (s *MemoryStream) Len() int { return len(s.buf) - s.offset }
