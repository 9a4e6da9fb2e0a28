package png

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kettek/apng"
	"github.com/rm-hull/pixconv/internal/pixbuf"
)

// Animate assembles the frames into a looping APNG, each shown for
// frameDelay seconds.
func Animate(frames []*pixbuf.PixelBuffer, frameDelay float64) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to animate")
	}
	if frameDelay <= 0 || frameDelay*1000 > 65535 {
		return nil, fmt.Errorf("frame delay out of range: %v", frameDelay)
	}

	a := apng.APNG{
		Frames:    make([]apng.Frame, len(frames)),
		LoopCount: 0,
	}

	w, h := frames[0].Width(), frames[0].Height()
	for i, frame := range frames {
		if frame.Width() != w || frame.Height() != h {
			return nil, fmt.Errorf("frame %d is %dx%d, expected %dx%d", i, frame.Width(), frame.Height(), w, h)
		}
		a.Frames[i] = apng.Frame{
			Image:            pixbuf.ToImage(frame),
			DelayNumerator:   uint16(frameDelay * 1000),
			DelayDenominator: 1000,
		}
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, a); err != nil {
		return nil, fmt.Errorf("failed to encode animation: %w", err)
	}

	return buf.Bytes(), nil
}

// AnimateFiles decodes every file with DecodeFile and animates the result.
func AnimateFiles(files []string, frameDelay float64) ([]byte, error) {
	frames := make([]*pixbuf.PixelBuffer, len(files))
	for i, fname := range files {
		b, err := DecodeFile(fname)
		if err != nil {
			return nil, err
		}
		frames[i] = b
	}
	return Animate(frames, frameDelay)
}
