package cmd

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/png/stage"
)

type ConvertOptions struct {
	Expand     bool
	Flip       bool
	SwapRB     bool
	StripAlpha bool
	Greyscale  bool

	// ReplaceColor fades pixels within Tolerance of it to transparent.
	ReplaceColor color.Color
	Tolerance    float64

	Blur    float64
	Width   int
	Height  int
	MaxSize uint
	Encode  png.EncodeOptions
}

// Stages lists the pipeline in a fixed order: channel layout first, then
// colour, then geometry.
func (o ConvertOptions) Stages() []png.PipelineStage {
	var stages []png.PipelineStage
	if o.SwapRB {
		stages = append(stages, &stage.SwapRedBlueStage{})
	}
	if o.Expand {
		stages = append(stages, &stage.ExpandStage{})
	}
	if o.StripAlpha {
		stages = append(stages, &stage.StripAlphaStage{})
	}
	if o.ReplaceColor != nil {
		stages = append(stages, &stage.ReplaceColorStage{Tolerance: o.Tolerance, Replace: o.ReplaceColor})
	}
	if o.Greyscale {
		stages = append(stages, &stage.GreyscaleStage{})
	}
	if o.Blur > 0 {
		stages = append(stages, &stage.GaussianBlurStage{Sigma: o.Blur})
	}
	if o.Width > 0 || o.Height > 0 {
		stages = append(stages, &stage.ResampleStage{Width: o.Width, Height: o.Height})
	}
	if o.MaxSize > 0 {
		stages = append(stages, &stage.ThumbnailStage{MaxSize: o.MaxSize})
	}
	if o.Flip {
		stages = append(stages, &stage.FlipStage{})
	}
	return stages
}

// ParseColor reads an opaque colour written as rrggbb, with or without a
// leading '#'.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: want rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func Convert(inFile, outFile string, opts ConvertOptions) error {
	img, err := png.NewImageFromFile(inFile)
	if err != nil {
		return err
	}
	before := img.Buf.String()

	if err := img.Pipeline(opts.Stages()...); err != nil {
		return fmt.Errorf("failed to process %s: %w", inFile, err)
	}
	if err := img.WriteFile(outFile, opts.Encode); err != nil {
		return err
	}
	fmt.Printf("%s: %s -> %s: %s\n", inFile, before, outFile, img.Buf)
	return nil
}
