package cmd

import (
	"fmt"

	"github.com/rm-hull/pixconv/internal/imgio"
	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/ppm"
)

// Png2Ppm converts an RGB/RGBA PNG to a PPM. Alpha is dropped and 16-bit
// samples are reduced to 8-bit.
func Png2Ppm(inFile, outFile string, opts ppm.Options) error {
	b, err := png.DecodeFile(inFile)
	if err != nil {
		return err
	}
	if err := pixbuf.ToRGB8(b); err != nil {
		return fmt.Errorf("failed to convert %s to RGB: %w", inFile, err)
	}
	if err := ppm.WriteFile(outFile, b, opts); err != nil {
		return err
	}
	fmt.Printf("%s: %s -> %s\n", inFile, b, outFile)
	return nil
}

// Img2Ppm is Png2Ppm for any readable image format.
func Img2Ppm(inFile, outFile string, opts ppm.Options) error {
	b, format, err := imgio.DecodeFile(inFile)
	if err != nil {
		return err
	}
	if err := ppm.WriteFile(outFile, b, opts); err != nil {
		return err
	}
	fmt.Printf("%s (%s): %s -> %s\n", inFile, format, b, outFile)
	return nil
}
