package formrender

import (
	"bytes"
	"fmt"
	"html/template"
)

const fontFamily = "Go, Arial, sans-serif"

var markupTemplate = template.Must(template.New("form").Funcs(template.FuncMap{
	"anchor": func(a Anchor) string {
		if a == AnchorMiddle {
			return "middle"
		}
		return "start"
	},
	"weight": func(s Style) string {
		if s.Bold {
			return "bold"
		}
		return "normal"
	},
	"fontStyle": func(s Style) string {
		if s.Italic {
			return "italic"
		}
		return "normal"
	},
	"size": func(s Style) string {
		return fmt.Sprintf("%gpx", s.Size)
	},
}).Parse(`{{define "text"}}<text class="{{.Role}}"{{if .Source}} data-source="{{.Source}}"{{end}} x="{{.X}}" y="{{.Y}}" font-family="` + fontFamily + `" font-size="{{size .Style}}" font-weight="{{weight .Style}}" font-style="{{fontStyle .Style}}" fill="{{.Style.Hex}}" text-anchor="{{anchor .Anchor}}">{{.Content}}</text>
{{end}}<svg xmlns="http://www.w3.org/2000/svg" class="form-page" data-kind="{{.Layout.Kind}}" width="{{.Layout.Width}}" height="{{.Layout.Height}}" viewBox="0 0 {{.Layout.Width}} {{.Layout.Height}}">
<rect x="0" y="0" width="{{.Layout.Width}}" height="{{.Layout.Height}}" fill="#FFFFFF"/>
{{if and .LogoHref (not .Layout.Logo.Empty)}}<image class="logo" href="{{.LogoHref}}" x="{{.Layout.Logo.Min.X}}" y="{{.Layout.Logo.Min.Y}}" width="{{.Layout.Logo.Dx}}" height="{{.Layout.Logo.Dy}}" preserveAspectRatio="none"/>
{{end}}{{range .Layout.Header}}{{template "text" .}}{{end}}{{range .Layout.Blocks}}<g class="block" data-block="{{.Name}}">
<rect x="{{.Frame.Min.X}}" y="{{.Frame.Min.Y}}" width="{{.Frame.Dx}}" height="{{.Frame.Dy}}" fill="none" stroke="#000000" stroke-width="{{$.BorderWidth}}"/>
{{range .Texts}}{{template "text" .}}{{end}}</g>
{{end}}</svg>
`))

type markupData struct {
	Layout      *Layout
	LogoHref    template.URL
	BorderWidth int
}

func renderMarkup(l *Layout, logoHref string) (string, error) {
	var buf bytes.Buffer
	err := markupTemplate.Execute(&buf, markupData{
		Layout:      l,
		LogoHref:    template.URL(logoHref),
		BorderWidth: BorderWidth,
	})
	if err != nil {
		return "", fmt.Errorf("render markup: %w", err)
	}
	return buf.String(), nil
}

