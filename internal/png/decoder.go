package png

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/rm-hull/pixconv/internal/pixbuf"
)

// DecodeFile reads an RGB or RGBA PNG from path. The signature is checked
// in the init phase, before anything else is parsed.
func DecodeFile(path string) (*pixbuf.PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, decodeError(pixbuf.PhaseInit, path, pixbuf.IOError("open", err))
	}
	defer f.Close()

	d := newDecoder(readerSource{bufio.NewReader(f)})
	if fi, err := f.Stat(); err == nil {
		d.inputSize = fi.Size()
	}
	img, err := decode(d, pixbuf.PhaseInit)
	if err != nil {
		return nil, withPath(err, path)
	}
	return img, nil
}

// DecodeStream reads a PNG starting at the stream's current offset. Here the
// signature is part of the header phase: the caller positioned the stream
// and is trusted to have landed on a PNG.
func DecodeStream(s *MemoryStream) (*pixbuf.PixelBuffer, error) {
	d := newDecoder(s)
	d.inputSize = int64(s.Len())
	return decode(d, pixbuf.PhaseHeader)
}

// DecodeBytes is DecodeStream over the whole of data.
func DecodeBytes(data []byte) (*pixbuf.PixelBuffer, error) {
	return DecodeStream(NewMemoryStream(data))
}

// DecodeInfo parses the signature and IHDR only. It does not apply the
// colour type/bit depth restrictions, so it can describe any PNG.
func DecodeInfo(r io.Reader) (Header, error) {
	d := newDecoder(readerSource{r})
	if err := d.checkSignature(); err != nil {
		return Header{}, decodeError(pixbuf.PhaseHeader, "", err)
	}
	h, err := d.readHeader()
	if err != nil {
		return Header{}, decodeError(pixbuf.PhaseHeader, "", err)
	}
	return h, nil
}

func decode(d *decoder, signaturePhase pixbuf.Phase) (*pixbuf.PixelBuffer, error) {
	if err := d.checkSignature(); err != nil {
		return nil, decodeError(signaturePhase, "", err)
	}

	h, err := d.readHeader()
	if err == nil {
		err = h.Supported()
	}
	if err == nil {
		err = d.checkExpansion(h)
	}
	if err != nil {
		return nil, decodeError(pixbuf.PhaseHeader, "", err)
	}

	img, err := d.readBody(h)
	if err != nil {
		return nil, decodeError(pixbuf.PhaseBody, "", err)
	}
	return img, nil
}

type decoder struct {
	src        source
	crc        hash.Hash32
	tmp        [4096]byte
	idatLength uint32
	seenIDAT   bool
	idatDone   bool
	// inputSize bounds the compressed bytes available, or -1 if unknown.
	inputSize int64
}

func newDecoder(src source) *decoder {
	return &decoder{
		src:       src,
		crc:       crc32.NewIEEE(),
		inputSize: -1,
	}
}

// maxInflateRatio is the best compression deflate can reach, so no input
// of n bytes can inflate to more than n*maxInflateRatio.
const maxInflateRatio = 1032

// checkExpansion rejects a header whose filtered rows could not possibly
// fit in the input that remains, before anything is allocated for them.
func (d *decoder) checkExpansion(h Header) error {
	size, err := pixbuf.Size(h.Width, h.Height, h.Channels(), h.BitDepth)
	if err != nil {
		return err
	}
	if d.inputSize < 0 {
		return nil
	}
	need := int64(size) + int64(h.Height)
	if need/maxInflateRatio > d.inputSize {
		return fmt.Errorf("%w: %dx%d needs %d bytes of pixel data, more than %d input bytes can hold",
			pixbuf.ErrInsufficientData, h.Width, h.Height, need, d.inputSize)
	}
	return nil
}

func (d *decoder) checkSignature() error {
	sig := d.tmp[:len(pngSignature)]
	if err := d.src.ReadFull(sig); err != nil {
		return err
	}
	if string(sig) != pngSignature {
		return fmt.Errorf("%w: not recognized as a PNG file", pixbuf.ErrInvalidFormat)
	}
	return nil
}

// readChunkHeader reads a chunk's length and type and restarts the CRC.
func (d *decoder) readChunkHeader() (uint32, string, error) {
	if err := d.src.ReadFull(d.tmp[:8]); err != nil {
		return 0, "", err
	}
	length := binary.BigEndian.Uint32(d.tmp[:4])
	if length > 0x7fffffff {
		return 0, "", fmt.Errorf("%w: bad chunk length %d", pixbuf.ErrInvalidFormat, length)
	}
	typ := string(d.tmp[4:8])
	d.crc.Reset()
	d.crc.Write(d.tmp[4:8])
	return length, typ, nil
}

func (d *decoder) verifyChecksum(typ string) error {
	if err := d.src.ReadFull(d.tmp[:4]); err != nil {
		return err
	}
	if binary.BigEndian.Uint32(d.tmp[:4]) != d.crc.Sum32() {
		return fmt.Errorf("%w: invalid checksum in %s chunk", pixbuf.ErrInvalidFormat, typ)
	}
	return nil
}

func (d *decoder) readHeader() (Header, error) {
	length, typ, err := d.readChunkHeader()
	if err != nil {
		return Header{}, err
	}
	if typ != "IHDR" {
		return Header{}, fmt.Errorf("%w: first chunk is %q, want IHDR", pixbuf.ErrInvalidFormat, typ)
	}
	if length != ihdrLength {
		return Header{}, fmt.Errorf("%w: bad IHDR length %d", pixbuf.ErrInvalidFormat, length)
	}
	p := d.tmp[:ihdrLength]
	if err := d.src.ReadFull(p); err != nil {
		return Header{}, err
	}
	d.crc.Write(p)
	h, err := parseHeader(p)
	if err != nil {
		return Header{}, err
	}
	return h, d.verifyChecksum(typ)
}

// skipChunk discards a chunk body of a known length and checks its CRC.
func (d *decoder) skipChunk(typ string, length uint32) error {
	for length > 0 {
		n := min(len(d.tmp), int(length))
		if err := d.src.ReadFull(d.tmp[:n]); err != nil {
			return err
		}
		d.crc.Write(d.tmp[:n])
		length -= uint32(n)
	}
	return d.verifyChecksum(typ)
}

// Read presents consecutive IDAT chunks as one continuous zlib stream,
// skipping any ancillary chunks that come before the first one.
func (d *decoder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if d.idatDone {
		return 0, io.EOF
	}
	for d.idatLength == 0 {
		if d.seenIDAT {
			if err := d.verifyChecksum("IDAT"); err != nil {
				return 0, err
			}
		}
		length, typ, err := d.readChunkHeader()
		if err != nil {
			return 0, err
		}
		switch {
		case typ == "IDAT":
			d.seenIDAT = true
			d.idatLength = length
		case d.seenIDAT:
			// The IDAT run is over; whatever follows is not image data.
			d.idatDone = true
			return 0, io.EOF
		case typ == "IEND":
			return 0, fmt.Errorf("%w: no IDAT chunk before IEND", pixbuf.ErrInvalidFormat)
		case typ == "IHDR" || (isCritical(typ) && typ != "PLTE"):
			return 0, fmt.Errorf("%w: unexpected %s chunk", pixbuf.ErrInvalidFormat, typ)
		default:
			if err := d.skipChunk(typ, length); err != nil {
				return 0, err
			}
		}
	}

	n := min(len(p), int(d.idatLength))
	if err := d.src.ReadFull(p[:n]); err != nil {
		return 0, err
	}
	d.crc.Write(p[:n])
	d.idatLength -= uint32(n)
	return n, nil
}

// readBody allocates the output, builds one row view per scanline over it,
// and fills every row from the inflated IDAT stream, top to bottom.
func (d *decoder) readBody(h Header) (*pixbuf.PixelBuffer, error) {
	img, err := pixbuf.New(h.Width, h.Height, h.Channels(), h.BitDepth)
	if err != nil {
		return nil, err
	}

	// A bufio.Reader satisfies flate.Reader, so inflate consumes exactly the
	// zlib stream and anything left in br afterwards is trailing data.
	br := bufio.NewReader(d)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, inflateError(err)
	}
	defer zr.Close()

	bpp := h.Channels() * h.BitDepth / 8
	if err := readRows(zr, img.Rows(), bpp); err != nil {
		return nil, inflateError(err)
	}
	if err := finishStream(zr, br); err != nil {
		return nil, err
	}
	return img, nil
}

// finishStream reads the zlib stream to its end, which verifies the Adler-32
// checksum, and then requires the IDAT run to be exhausted too.
func finishStream(zr io.Reader, br *bufio.Reader) error {
	extra, err := io.Copy(io.Discard, zr)
	if err != nil {
		return inflateError(err)
	}
	if extra > 0 {
		return fmt.Errorf("%w: %d bytes of pixel data after the last row", pixbuf.ErrInvalidFormat, extra)
	}
	switch _, err := br.ReadByte(); {
	case err == nil:
		return fmt.Errorf("%w: trailing data after the zlib stream", pixbuf.ErrInvalidFormat)
	case !errors.Is(err, io.EOF):
		return inflateError(err)
	}
	return nil
}

func readRows(r io.Reader, rows [][]byte, bpp int) error {
	var filter [1]byte
	prev := make([]byte, len(rows[0]))
	for _, row := range rows {
		if _, err := io.ReadFull(r, filter[:]); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, row); err != nil {
			return err
		}
		if err := unfilter(filter[0], row, prev, bpp); err != nil {
			return err
		}
		prev = row
	}
	return nil
}

// inflateError maps zlib and stream errors onto the error taxonomy.
func inflateError(err error) error {
	var corrupt flate.CorruptInputError
	switch {
	case errors.Is(err, pixbuf.ErrInvalidFormat),
		errors.Is(err, pixbuf.ErrInsufficientData),
		errors.Is(err, pixbuf.ErrIO):
		return err
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: not enough pixel data", pixbuf.ErrInsufficientData)
	case errors.As(err, &corrupt),
		errors.Is(err, zlib.ErrHeader),
		errors.Is(err, zlib.ErrChecksum),
		errors.Is(err, zlib.ErrDictionary):
		return fmt.Errorf("%w: %w", pixbuf.ErrInvalidFormat, err)
	}
	return fmt.Errorf("%w: %w", pixbuf.ErrInvalidFormat, err)
}

func decodeError(phase pixbuf.Phase, path string, err error) error {
	return &pixbuf.PhaseError{Op: "decode", Phase: phase, Path: path, Err: err}
}

func withPath(err error, path string) error {
	var pe *pixbuf.PhaseError
	if errors.As(err, &pe) && pe.Path == "" {
		pe.Path = path
	}
	return err
}
