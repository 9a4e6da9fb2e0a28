package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/models/pixconv"
)

// Info prints the PNG header of each file as JSON.
func Info(files []string) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, file := range files {
		info, err := describe(file)
		if err != nil {
			return err
		}
		fmt.Println(file)
		if err := enc.Encode(info); err != nil {
			return err
		}
	}
	return nil
}

func describe(file string) (*pixconv.ImageInfo, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, pixbuf.IOError("open "+file, err)
	}
	defer f.Close()

	h, err := png.DecodeInfo(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	info := &pixconv.ImageInfo{
		Width:      h.Width,
		Height:     h.Height,
		BitDepth:   h.BitDepth,
		ColorType:  h.ColorType.String(),
		Channels:   h.Channels(),
		Interlaced: h.Interlace != 0,
		Supported:  true,
	}
	if err := h.Supported(); err != nil {
		info.Supported = false
		info.Reason = err.Error()
	}
	return info, nil
}
