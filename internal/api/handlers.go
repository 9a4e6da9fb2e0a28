// Package api exposes the codec over HTTP. Every endpoint takes the input
// image as the raw request body.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rm-hull/pixconv/internal/config"
	"github.com/rm-hull/pixconv/internal/pixbuf"
	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/png/stage"
	"github.com/rm-hull/pixconv/internal/ppm"
	"github.com/rm-hull/pixconv/internal/raw"
	"github.com/rm-hull/pixconv/models/pixconv"
)

const (
	maxBodyBytes = 256 << 20
	// maxPixels caps the frame a request may ask the server to allocate.
	maxPixels = 1 << 25

	contentTypePNG = "image/png"
	contentTypePPM = "image/x-portable-pixmap"
)

var (
	errBadRequest = errors.New("bad request")
	errTooLarge   = errors.New("image too large")
)

type Handlers struct {
	cfg config.Config
}

// NewHandlers uses cfg for the defaults of the raw conversion parameters.
func NewHandlers(cfg config.Config) *Handlers {
	return &Handlers{cfg: cfg}
}

func (h *Handlers) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/png/info", h.Info)
	v1.POST("/png/ppm", h.PPM)
	v1.POST("/png/flip", h.Flip)
	v1.POST("/raw/png", h.RawToPNG)
}

func (h *Handlers) Info(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	hdr, err := png.DecodeInfo(bytes.NewReader(body))
	if err != nil {
		respondError(c, err)
		return
	}

	info := pixconv.ImageInfo{
		Width:      hdr.Width,
		Height:     hdr.Height,
		BitDepth:   hdr.BitDepth,
		ColorType:  hdr.ColorType.String(),
		Channels:   hdr.Channels(),
		Interlaced: hdr.Interlace != 0,
		Supported:  true,
	}
	if err := hdr.Supported(); err != nil {
		info.Supported = false
		info.Reason = err.Error()
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handlers) PPM(c *gin.Context) {
	ascii, err := boolQuery(c, "ascii")
	if err != nil {
		respondError(c, err)
		return
	}
	headerless, err := boolQuery(c, "headerless")
	if err != nil {
		respondError(c, err)
		return
	}
	opts := ppm.Options{Binary: !ascii, Headerless: headerless}

	img, ok := decodeBody(c)
	if !ok {
		return
	}
	if err := pixbuf.ToRGB8(img.Buf); err != nil {
		respondError(c, err)
		return
	}

	var out bytes.Buffer
	if err := ppm.Write(&out, img.Buf, opts); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypePPM, out.Bytes())
}

func (h *Handlers) Flip(c *gin.Context) {
	img, ok := decodeBody(c)
	if !ok {
		return
	}
	if err := img.Pipeline(&stage.ReduceDepthStage{}, &stage.FlipStage{}); err != nil {
		respondError(c, err)
		return
	}
	h.writePNG(c, img.Buf)
}

func (h *Handlers) RawToPNG(c *gin.Context) {
	cfg := h.cfg
	for _, q := range []struct {
		key string
		dst *int
	}{
		{"width", &cfg.Width},
		{"height", &cfg.Height},
		{"offset", &cfg.Offset},
		{"channels", &cfg.Channels},
		{"depth", &cfg.Depth},
	} {
		v := c.Query(q.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %s=%q is not a number", errBadRequest, q.key, v))
			return
		}
		*q.dst = n
	}
	if v := c.Query("order"); v != "" {
		cfg.Format = v
	}

	layout, err := cfg.Layout()
	if err != nil {
		if _, perr := raw.ParseOrder(cfg.Format); perr != nil {
			err = fmt.Errorf("%w: %w", errBadRequest, perr)
		}
		respondError(c, err)
		return
	}
	if err := checkPixels(layout.Width, layout.Height); err != nil {
		respondError(c, err)
		return
	}

	body, ok := readBody(c)
	if !ok {
		return
	}
	b, err := raw.Decode(body, layout)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writePNG(c, b)
}

func (h *Handlers) writePNG(c *gin.Context, b *pixbuf.PixelBuffer) {
	opts, err := h.cfg.EncodeOptions()
	if err != nil {
		respondError(c, err)
		return
	}
	var out bytes.Buffer
	if err := png.EncodeBuffer(&out, b, opts); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypePNG, out.Bytes())
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, pixconv.ErrorResponse{Error: err.Error()})
			return nil, false
		}
		respondError(c, pixbuf.IOError("read request body", err))
		return nil, false
	}
	return body, true
}

// decodeBody checks the declared dimensions against maxPixels before
// decoding, so a short body cannot make the server allocate a huge frame.
func decodeBody(c *gin.Context) (*png.Image, bool) {
	body, ok := readBody(c)
	if !ok {
		return nil, false
	}
	if hdr, err := png.DecodeInfo(bytes.NewReader(body)); err == nil {
		if err := checkPixels(hdr.Width, hdr.Height); err != nil {
			respondError(c, err)
			return nil, false
		}
	}
	img, err := png.NewImageFromBytes(body)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return img, true
}

func checkPixels(width, height int) error {
	if width > 0 && height > 0 && int64(width)*int64(height) > maxPixels {
		return fmt.Errorf("%w: %dx%d is over the %d pixel limit", errTooLarge, width, height, maxPixels)
	}
	return nil
}

func boolQuery(c *gin.Context, key string) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", errBadRequest, key, v)
	}
	return b, nil
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pixbuf.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pixbuf.ErrInvalidFormat), errors.Is(err, pixbuf.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, pixconv.ErrorResponse{
		Error: err.Error(),
		Phase: string(pixbuf.PhaseOf(err)),
	})
}
