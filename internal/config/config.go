// Package config holds the settings shared by the raw converters. Values
// start from built-in defaults, are overridden by PIXCONV_* environment
// variables (a .env file is loaded by main), and finally by command flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/raw"
)

type Config struct {
	Width       int
	Height      int
	Channels    int
	Depth       int
	Offset      int
	Format      string
	Compression string
	Workers     int
	Inbox       string
	Pattern     string
}

func Default() Config {
	l := raw.DefaultLayout()
	return Config{
		Width:       l.Width,
		Height:      l.Height,
		Channels:    l.Channels,
		Depth:       l.BitDepth,
		Offset:      l.Offset,
		Format:      l.Order.String(),
		Compression: "default",
		Workers:     4,
		Inbox:       "./data/inbox",
		Pattern:     "*.raw",
	}
}

// FromEnv returns the defaults overlaid with any PIXCONV_* variables set in
// the environment.
func FromEnv() (Config, error) {
	c := Default()
	var errs []error
	intVar := func(key string, dst *int) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse %s=%q: %w", key, v, err))
			return
		}
		*dst = n
	}
	stringVar := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	intVar("PIXCONV_WIDTH", &c.Width)
	intVar("PIXCONV_HEIGHT", &c.Height)
	intVar("PIXCONV_CHANNELS", &c.Channels)
	intVar("PIXCONV_DEPTH", &c.Depth)
	intVar("PIXCONV_OFFSET", &c.Offset)
	intVar("PIXCONV_WORKERS", &c.Workers)
	stringVar("PIXCONV_FORMAT", &c.Format)
	stringVar("PIXCONV_COMPRESSION", &c.Compression)
	stringVar("PIXCONV_INBOX", &c.Inbox)
	stringVar("PIXCONV_PATTERN", &c.Pattern)

	return c, errors.Join(errs...)
}

// Layout converts the raw capture settings, validating them on the way.
func (c Config) Layout() (raw.Layout, error) {
	order, err := raw.ParseOrder(c.Format)
	if err != nil {
		return raw.Layout{}, err
	}
	l := raw.Layout{
		Width:    c.Width,
		Height:   c.Height,
		Offset:   c.Offset,
		Channels: c.Channels,
		BitDepth: c.Depth,
		Order:    order,
	}
	if err := l.Validate(); err != nil {
		return raw.Layout{}, fmt.Errorf("invalid raw layout: %w", err)
	}
	return l, nil
}

func (c Config) EncodeOptions() (png.EncodeOptions, error) {
	level, err := png.ParseCompressionLevel(c.Compression)
	if err != nil {
		return png.EncodeOptions{}, err
	}
	return png.EncodeOptions{CompressionLevel: level}, nil
}

func (c Config) Validate() error {
	if _, err := c.Layout(); err != nil {
		return err
	}
	if _, err := c.EncodeOptions(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	return nil
}
