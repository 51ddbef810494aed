package formrender

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

var (
	ErrNoAnnotation   = errors.New("formrender: annotation layer is missing")
	ErrAnnotationSize = errors.New("formrender: annotation layer does not match the page size")
)

// Flatten draws the form on a white page and composites the annotation layer
// over it at the same origin. The annotation must be exactly one page in
// size; it is never scaled.
func (r *Renderer) Flatten(kind Kind, ctx Context, annotation image.Image) (*image.RGBA, error) {
	if annotation == nil {
		return nil, ErrNoAnnotation
	}
	ab := annotation.Bounds()
	if ab.Dx() != PageWidth || ab.Dy() != PageHeight {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrAnnotationSize, ab.Dx(), ab.Dy(), PageWidth, PageHeight)
	}

	page := image.NewRGBA(image.Rect(0, 0, PageWidth, PageHeight))
	draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)
	if err := r.RenderToCanvas(kind, ctx, page); err != nil {
		return nil, fmt.Errorf("draw template: %w", err)
	}
	draw.Draw(page, page.Bounds(), annotation, ab.Min, draw.Over)
	return page, nil
}

// EncodePNG encodes a flattened page.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeAnnotation decodes a PNG annotation layer, given either as raw
// base64 or as a data URL. A layer that is not exactly one page in size is
// rejected with ErrAnnotationSize without decoding its pixels.
func DecodeAnnotation(data string) (image.Image, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrNoAnnotation
	}
	if strings.HasPrefix(data, "data:") {
		i := strings.Index(data, ",")
		if i < 0 || !strings.HasSuffix(data[:i], ";base64") {
			return nil, errors.New("formrender: annotation must be a base64 data URL")
		}
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode annotation: %w", err)
	}
	// The header is checked before decoding so a forged size never reaches
	// the pixel allocation.
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode annotation png: %w", err)
	}
	if cfg.Width != PageWidth || cfg.Height != PageHeight {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrAnnotationSize, cfg.Width, cfg.Height, PageWidth, PageHeight)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode annotation png: %w", err)
	}
	return img, nil
}
