package formrender

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

// ErrNoCanvas is returned when there is no surface to draw on.
var ErrNoCanvas = errors.New("formrender: no drawing surface")

// Assets are the clinic branding printed in the page header.
type Assets struct {
	ClinicName    string
	ClinicAddress string
	// LogoURL is referenced by the markup preview in place of embedding Logo.
	LogoURL string
	// Logo is drawn on the raster page. A nil logo leaves the slot empty.
	Logo image.Image
}

// Renderer draws forms for one clinic. It holds no mutable state and is
// safe for concurrent use.
type Renderer struct {
	assets   Assets
	logoHref string
}

// New builds a renderer. The preview shows the logo only when there is a
// raster logo to draw; without LogoURL the logo is embedded as a data URL.
func New(assets Assets) *Renderer {
	r := &Renderer{assets: assets}
	if assets.Logo == nil || LogoRect(assets.Logo.Bounds()).Empty() {
		r.assets.Logo = nil
		r.assets.LogoURL = ""
		return r
	}
	r.logoHref = assets.LogoURL
	if r.logoHref == "" {
		data, err := EncodePNG(assets.Logo)
		if err != nil {
			r.assets.Logo = nil
			return r
		}
		r.logoHref = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	}
	return r
}

// Assets returns the branding the renderer was built with.
func (r *Renderer) Assets() Assets {
	return r.assets
}

// Layout builds the layout shared by both renderings, with the logo slot
// filled in from the renderer's assets.
func (r *Renderer) Layout(kind Kind, ctx Context) (*Layout, error) {
	l, err := BuildLayout(kind, ctx, r.assets.ClinicAddress)
	if err != nil {
		return nil, err
	}
	if r.assets.Logo != nil {
		l.Logo = LogoRect(r.assets.Logo.Bounds())
	}
	return l, nil
}

// RenderTemplate returns the SVG preview of the form. Identical arguments
// always give identical output.
func (r *Renderer) RenderTemplate(kind Kind, ctx Context) (string, error) {
	l, err := r.Layout(kind, ctx)
	if err != nil {
		return "", err
	}
	return renderMarkup(l, r.logoHref)
}

// RenderToCanvas draws the form onto dst with the page origin at the top
// left corner of dst's bounds.
func (r *Renderer) RenderToCanvas(kind Kind, ctx Context, dst draw.Image) error {
	l, err := r.Layout(kind, ctx)
	if err != nil {
		return err
	}
	return drawCanvas(l, r.assets.Logo, dst)
}

// LoadLogo decodes a PNG or JPEG logo.
func LoadLogo(rd io.Reader) (image.Image, error) {
	img, _, err := image.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}
