package png

import (
	"io"

	"github.com/rm-hull/pixconv/internal/pixbuf"
)

// Image is the unit of work handed from stage to stage. Stages either edit
// Buf in place through the pixbuf operations or swap in a new buffer.
type Image struct {
	Buf *pixbuf.PixelBuffer
}

type PipelineStage interface {
	Process(img *Image) error
}

func NewImageFromFile(path string) (*Image, error) {
	b, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return &Image{Buf: b}, nil
}

func NewImageFromBytes(data []byte) (*Image, error) {
	b, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return &Image{Buf: b}, nil
}

func (p *Image) Write(w io.Writer, opts EncodeOptions) error {
	return EncodeBuffer(w, p.Buf, opts)
}

func (p *Image) WriteFile(path string, opts EncodeOptions) error {
	return EncodeFile(path, p.Buf.Data(), p.Buf.Width(), p.Buf.Height(), p.Buf.Channels(), p.Buf.BitDepth(), opts)
}

func (p *Image) Pipeline(stages ...PipelineStage) error {
	for _, stage := range stages {
		if err := stage.Process(p); err != nil {
			return err
		}
	}
	return nil
}
