package formrender

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce sync.Once
	fontsErr  error
	regular   *opentype.Font
	bold      *opentype.Font
	italic    *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		for _, f := range []struct {
			dst  **opentype.Font
			data []byte
		}{
			{&regular, goregular.TTF},
			{&bold, gobold.TTF},
			{&italic, goitalic.TTF},
		} {
			parsed, err := opentype.Parse(f.data)
			if err != nil {
				fontsErr = fmt.Errorf("parse font: %w", err)
				return
			}
			*f.dst = parsed
		}
	})
	return fontsErr
}

// faceCache holds the faces of one render. Faces are not safe for
// concurrent use, so they never outlive the call that made them.
type faceCache map[Style]font.Face

func (c faceCache) face(s Style) (font.Face, error) {
	key := Style{Size: s.Size, Bold: s.Bold, Italic: s.Italic}
	if f, ok := c[key]; ok {
		return f, nil
	}
	src := regular
	switch {
	case s.Bold:
		src = bold
	case s.Italic:
		src = italic
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    s.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	c[key] = f
	return f, nil
}

func (c faceCache) close() {
	for _, f := range c {
		f.Close()
	}
}

func drawCanvas(l *Layout, logo image.Image, dst draw.Image) error {
	if dst == nil {
		return ErrNoCanvas
	}
	if err := loadFonts(); err != nil {
		return err
	}
	origin := dst.Bounds().Min

	drawLogo(dst, l.Logo.Add(origin), logo)

	faces := faceCache{}
	defer faces.close()

	for _, t := range l.Header {
		if err := drawText(dst, origin, faces, t); err != nil {
			return err
		}
	}
	for _, b := range l.Blocks {
		strokeRect(dst, b.Frame.Add(origin), BorderWidth, black)
		for _, t := range b.Texts {
			if err := drawText(dst, origin, faces, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func drawLogo(dst draw.Image, slot image.Rectangle, logo image.Image) {
	if logo == nil || slot.Empty() {
		return
	}
	draw.CatmullRom.Scale(dst, slot, logo, logo.Bounds(), draw.Over, nil)
}

func drawText(dst draw.Image, origin image.Point, faces faceCache, t Text) error {
	if t.Content == "" {
		return nil
	}
	face, err := faces.face(t.Style)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(t.Style.Color),
		Face: face,
	}
	x := fixed.I(origin.X + t.X)
	if t.Anchor == AnchorMiddle {
		x -= d.MeasureString(t.Content) / 2
	}
	d.Dot = fixed.Point26_6{X: x, Y: fixed.I(origin.Y + t.Y)}
	d.DrawString(t.Content)
	return nil
}

// strokeRect draws a border of the given width centered on the edges of r.
func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	half := width / 2
	outer := image.Rect(r.Min.X-half, r.Min.Y-half, r.Max.X+width-half, r.Max.Y+width-half)
	src := image.NewUniform(c)
	for _, edge := range []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+width),
		image.Rect(outer.Min.X, outer.Max.Y-width, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+width, outer.Max.Y),
		image.Rect(outer.Max.X-width, outer.Min.Y, outer.Max.X, outer.Max.Y),
	} {
		draw.Draw(dst, edge, src, image.Point{}, draw.Src)
	}
}
