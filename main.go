package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/rm-hull/pixconv/cmd"
	"github.com/rm-hull/pixconv/internal"
	"github.com/rm-hull/pixconv/internal/config"
	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/ppm"
	"github.com/spf13/cobra"
)

func main() {
	var port int
	var debug bool
	var ascii, headerless bool
	var delay float64
	var every time.Duration
	var cronSpec string
	var convertOpts cmd.ConvertOptions

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:          "pixconv",
		Long:         `PNG / PPM / raw capture conversion tools`,
		SilenceUsage: true,
	}

	ppmOptions := func() ppm.Options {
		return ppm.Options{Binary: !ascii, Headerless: headerless}
	}

	png2ppmCmd := &cobra.Command{
		Use:   "png2ppm [-A] [-H] <input.png> <output.ppm>",
		Short: "Convert an RGB/RGBA PNG to PPM",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Png2Ppm(args[0], args[1], ppmOptions())
		},
	}

	img2ppmCmd := &cobra.Command{
		Use:   "img2ppm [-A] [-H] <input> <output.ppm>",
		Short: "Convert any readable image (png, jpeg, gif, bmp, tiff, webp, pnm) to PPM",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Img2Ppm(args[0], args[1], ppmOptions())
		},
	}

	for _, c := range []*cobra.Command{png2ppmCmd, img2ppmCmd} {
		c.Flags().BoolVarP(&ascii, "ascii", "A", false, "Write plain (P3) instead of binary (P6) PPM")
		c.Flags().BoolVarP(&headerless, "headerless", "H", false, "Omit the PPM header")
	}

	mat2pngCmd := &cobra.Command{
		Use:   "mat2png [options] <input> <output.png>",
		Short: "Convert a raw pixel capture to PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Mat2Png(args[0], args[1], cfg)
		},
	}

	convertRawCmd := &cobra.Command{
		Use:   "convert-raw [options] <file>...",
		Short: "Convert raw pixel captures to <file>.png",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.ConvertRaw(args, cfg)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [--every <duration> | --cron <spec>] [options]",
		Short: "Convert raw captures as they arrive in the inbox",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Watch(cfg, every, cronSpec)
		},
	}
	watchCmd.Flags().DurationVar(&every, "every", 0, "Sweep the inbox at this interval")
	watchCmd.Flags().StringVar(&cronSpec, "cron", "", "Sweep the inbox on this cron schedule")
	watchCmd.Flags().StringVar(&cfg.Inbox, "inbox", cfg.Inbox, "Folder to watch for raw captures")
	watchCmd.Flags().StringVar(&cfg.Pattern, "pattern", cfg.Pattern, "Glob of files to convert")
	watchCmd.MarkFlagsMutuallyExclusive("every", "cron")

	for _, c := range []*cobra.Command{mat2pngCmd, convertRawCmd, watchCmd} {
		f := c.Flags()
		f.IntVarP(&cfg.Width, "width", "W", cfg.Width, "Image width in pixels")
		f.IntVarP(&cfg.Height, "height", "H", cfg.Height, "Image height in pixels")
		f.IntVar(&cfg.Channels, "channels", cfg.Channels, "RGB (3) or RGBA (4)")
		f.IntVar(&cfg.Depth, "depth", cfg.Depth, "Channel bit depth")
		f.IntVar(&cfg.Offset, "offset", cfg.Offset, "Image data offset")
		f.StringVarP(&cfg.Format, "format", "F", cfg.Format, "Image data format (rgb or bgr)")
		f.StringVar(&cfg.Compression, "compression", cfg.Compression, "PNG compression: default, none, speed or best")
	}
	convertRawCmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of files converted in parallel")
	watchCmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of files converted in parallel")

	var compression, replaceColor string
	convertCmd := &cobra.Command{
		Use:   "convert [options] <input.png> <output.png>",
		Short: "Run a PNG through a pipeline of transforms",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			level, err := png.ParseCompressionLevel(compression)
			if err != nil {
				return err
			}
			convertOpts.Encode.CompressionLevel = level
			if replaceColor != "" {
				c, err := cmd.ParseColor(replaceColor)
				if err != nil {
					return err
				}
				convertOpts.ReplaceColor = c
			}
			return cmd.Convert(args[0], args[1], convertOpts)
		},
	}
	cf := convertCmd.Flags()
	cf.BoolVar(&convertOpts.Expand, "expand", false, "Widen RGB to RGBA")
	cf.BoolVar(&convertOpts.Flip, "flip", false, "Flip vertically (always produces RGBA)")
	cf.BoolVar(&convertOpts.SwapRB, "swap-rb", false, "Swap red and blue (RGB input only)")
	cf.BoolVar(&convertOpts.StripAlpha, "strip-alpha", false, "Drop the alpha channel")
	cf.StringVar(&replaceColor, "replace-color", "", "Fade this colour (rrggbb) to transparent")
	cf.Float64Var(&convertOpts.Tolerance, "tolerance", 50, "Colour distance within which --replace-color applies")
	cf.BoolVar(&convertOpts.Greyscale, "greyscale", false, "Convert to luminance")
	cf.Float64Var(&convertOpts.Blur, "blur", 0, "Gaussian blur sigma")
	cf.IntVar(&convertOpts.Width, "resize-width", 0, "Resample to this width")
	cf.IntVar(&convertOpts.Height, "resize-height", 0, "Resample to this height")
	cf.UintVar(&convertOpts.MaxSize, "max-size", 0, "Shrink to fit in a square of this size")
	cf.StringVar(&compression, "compression", cfg.Compression, "PNG compression: default, none, speed or best")

	infoCmd := &cobra.Command{
		Use:   "info <file.png>...",
		Short: "Show PNG header details",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Info(args)
		},
	}

	animateCmd := &cobra.Command{
		Use:   "animate [--delay <seconds>] <output.png> <frame.png>...",
		Short: "Assemble PNG frames into an animated PNG",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Animate(args[0], args[1:], delay)
		},
	}
	animateCmd.Flags().Float64Var(&delay, "delay", 1.0, "Seconds per frame")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--port <port>] [--debug]",
		Short: "Start HTTP API server",
		Run: func(_ *cobra.Command, _ []string) {
			cmd.ApiServer(cfg, port, debug)
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(_ *cobra.Command, _ []string) {
			internal.ShowVersion()
		},
	}

	rootCmd.AddCommand(png2ppmCmd, img2ppmCmd, mat2pngCmd, convertRawCmd, convertCmd, infoCmd, animateCmd, watchCmd, apiServerCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
