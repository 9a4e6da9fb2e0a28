package cmd

import (
	"fmt"
	"os"

	"github.com/rm-hull/pixconv/internal/png"
)

func Animate(outFile string, frames []string, delay float64) error {
	apngBytes, err := png.AnimateFiles(frames, delay)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, apngBytes, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}
	fmt.Printf("%d frames -> %s (%d bytes)\n", len(frames), outFile, len(apngBytes))
	return nil
}
