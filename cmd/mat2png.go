package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/rm-hull/pixconv/internal"
	"github.com/rm-hull/pixconv/internal/config"
	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/raw"
)

// Mat2Png converts a single raw capture to a PNG.
func Mat2Png(inFile, outFile string, cfg config.Config) error {
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	opts, err := cfg.EncodeOptions()
	if err != nil {
		return err
	}

	b, err := raw.Load(inFile, layout)
	if err != nil {
		return err
	}
	img := &png.Image{Buf: b}
	if err := img.WriteFile(outFile, opts); err != nil {
		return err
	}
	fmt.Printf("%s: %s -> %s\n", inFile, b, outFile)
	return nil
}

// ConvertRaw converts each file to <file>.png using a pool of cfg.Workers.
func ConvertRaw(files []string, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	layout, _ := cfg.Layout()
	opts, _ := cfg.EncodeOptions()

	conv, err := internal.NewFileConverter(files, cfg.Workers, layout, opts)
	if err != nil {
		return err
	}
	errs := conv.Run()
	for _, err := range errs {
		log.Printf("%v", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(files), errors.Join(errs...))
	}
	return nil
}
