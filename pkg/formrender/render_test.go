package formrender

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, time.March, 7, 14, 30, 0, 0, time.UTC)

func testContext(items LineItemSet) Context {
	return Context{
		Patient: Patient{
			Name:   "Asha Rao",
			MRNo:   "MR-1001",
			Age:    "34",
			Gender: "Female",
			Phone:  "9876543210",
		},
		Doctor:    Doctor{Name: "Dr. Meera Iyer", RegistrationNo: "KMC-55231"},
		Timestamp: fixedTime,
		Items:     items,
	}
}

func testRenderer() *Renderer {
	return New(Assets{ClinicName: "Cura Hospitals", ClinicAddress: "Bengaluru, Karnataka"})
}

func TestRenderTemplate_LaboratoryPlaceholder(t *testing.T) {
	out, err := testRenderer().RenderTemplate(KindLaboratory, testContext(LineItemSet{}))
	require.NoError(t, err)

	assert.Contains(t, out, NoTestsText)
	assert.Contains(t, out, `class="placeholder"`)
	assert.Contains(t, out, `font-style="italic"`)
	assert.NotContains(t, out, `class="line-item"`)
}

func TestRenderTemplate_LaboratoryRows(t *testing.T) {
	items := NewTestSet([]Test{
		{ID: "r1", Name: "Chest X-Ray", Source: SourceRadiology, Price: 800},
		{ID: "l1", Name: "Complete Blood Count", Source: SourceLab, Price: 350},
	})
	out, err := testRenderer().RenderTemplate(KindLaboratory, testContext(items))
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, `class="line-item"`))
	assert.NotContains(t, out, NoTestsText)
	assert.Contains(t, out, "Complete Blood Count")
	assert.Contains(t, out, "(Lab Test) - Rs. 350.00")
	assert.Contains(t, out, "Chest X-Ray")
	assert.Contains(t, out, "(Radiology) - Rs. 800.00")
	assert.Less(t, strings.Index(out, "Complete Blood Count"), strings.Index(out, "Chest X-Ray"))
}

func TestRenderTemplate_PrescriptionPlaceholder(t *testing.T) {
	out, err := testRenderer().RenderTemplate(KindPrescription, testContext(LineItemSet{}))
	require.NoError(t, err)

	assert.Contains(t, out, NoMedicinesText)
	assert.NotContains(t, out, `class="line-item"`)
}

func TestRenderTemplate_PrescriptionEntries(t *testing.T) {
	items := NewMedicineSet([]Medicine{
		{ID: "1", Name: "Paracetamol 500mg", Dosage: "1-0-1", Duration: "5 days", Instructions: "After food"},
		{ID: "2", Name: "Cetirizine 10mg"},
	})
	out, err := testRenderer().RenderTemplate(KindPrescription, testContext(items))
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, `class="line-item"`))
	assert.Equal(t, 3, strings.Count(out, `class="line-detail"`))
	assert.Contains(t, out, "1. Paracetamol 500mg")
	assert.Contains(t, out, "2. Cetirizine 10mg")
	assert.Contains(t, out, "Dosage: 1-0-1")
}

func TestRenderTemplate_Idempotent(t *testing.T) {
	r := testRenderer()
	ctx := testContext(NewMedicineSet([]Medicine{{ID: "1", Name: "Amoxicillin"}}))

	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			first, err := r.RenderTemplate(kind, ctx)
			require.NoError(t, err)
			second, err := r.RenderTemplate(kind, ctx)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestRenderTemplate_UnknownKind(t *testing.T) {
	_, err := testRenderer().RenderTemplate(Kind("referral"), testContext(LineItemSet{}))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRenderTemplate_EscapesContent(t *testing.T) {
	ctx := testContext(LineItemSet{})
	ctx.Patient.Name = `<script>alert(1)</script>`

	out, err := testRenderer().RenderTemplate(KindCertificate, ctx)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestRenderTemplate_MatchesLayout(t *testing.T) {
	r := testRenderer()
	items := NewTestSet([]Test{{ID: "l1", Name: "Lipid Profile", Source: SourceLab, Price: 600}})
	ctx := testContext(items)

	l, err := r.Layout(KindLaboratory, ctx)
	require.NoError(t, err)
	out, err := r.RenderTemplate(KindLaboratory, ctx)
	require.NoError(t, err)

	for _, b := range l.Blocks {
		assert.Contains(t, out, `data-block="`+b.Name+`"`)
		for _, txt := range b.Texts {
			if strings.ContainsAny(txt.Content, `'"<>&+`) {
				continue
			}
			assert.Contains(t, out, ">"+txt.Content+"</text>")
		}
	}
}

func redLogo() *image.RGBA {
	logo := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			logo.SetRGBA(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	return logo
}

func TestRenderTemplate_LogoURL(t *testing.T) {
	ctx := testContext(LineItemSet{})

	out, err := testRenderer().RenderTemplate(KindConsultation, ctx)
	require.NoError(t, err)
	assert.NotContains(t, out, `class="logo"`)

	r := New(Assets{ClinicAddress: "Bengaluru, Karnataka", LogoURL: "/static/logo.png", Logo: redLogo()})
	out, err = r.RenderTemplate(KindConsultation, ctx)
	require.NoError(t, err)
	assert.Contains(t, out, `href="/static/logo.png" x="337" y="30" width="120" height="60"`)
}

func TestRenderTemplate_EmbedsLogoWithoutURL(t *testing.T) {
	r := New(Assets{ClinicAddress: "Bengaluru, Karnataka", Logo: redLogo()})

	out, err := r.RenderTemplate(KindCertificate, testContext(LineItemSet{}))
	require.NoError(t, err)
	assert.Contains(t, out, `href="data:image/png;base64,`)
}

func TestRenderTemplate_LogoMatchesCanvas(t *testing.T) {
	ctx := testContext(LineItemSet{})
	headerInk := func(page *image.RGBA) int {
		n := 0
		for y := LogoTop; y < LogoTop+LogoHeight; y++ {
			for x := 0; x < PageWidth; x++ {
				if page.RGBAAt(x, y) != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
					n++
				}
			}
		}
		return n
	}

	tests := []struct {
		name   string
		assets Assets
		logo   bool
	}{
		{"url without a loaded logo", Assets{LogoURL: "/ch-logo.png"}, false},
		{"no logo", Assets{}, false},
		{"empty logo image", Assets{LogoURL: "/ch-logo.png", Logo: image.NewRGBA(image.Rectangle{})}, false},
		{"loaded logo", Assets{LogoURL: "/ch-logo.png", Logo: redLogo()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.assets)

			markup, err := r.RenderTemplate(KindCertificate, ctx)
			require.NoError(t, err)
			page, err := r.Flatten(KindCertificate, ctx, image.NewRGBA(image.Rect(0, 0, PageWidth, PageHeight)))
			require.NoError(t, err)

			assert.Equal(t, tt.logo, strings.Contains(markup, `class="logo"`))
			assert.Equal(t, tt.logo, headerInk(page) > 0)
		})
	}
}

func TestBuildLayout_Frames(t *testing.T) {
	tests := []struct {
		kind   Kind
		frames []image.Rectangle
	}{
		{KindPrescription, []image.Rectangle{
			image.Rect(60, 180, 734, 320), image.Rect(60, 340, 734, 940), image.Rect(60, 960, 734, 1060),
		}},
		{KindConsultation, []image.Rectangle{
			image.Rect(60, 180, 734, 260), image.Rect(60, 280, 734, 380), image.Rect(60, 400, 734, 520),
			image.Rect(60, 540, 734, 660), image.Rect(60, 680, 734, 800), image.Rect(60, 820, 734, 920),
		}},
		{KindLaboratory, []image.Rectangle{
			image.Rect(60, 180, 734, 280), image.Rect(60, 300, 734, 700), image.Rect(60, 720, 734, 820), image.Rect(60, 840, 734, 940),
		}},
		{KindCertificate, []image.Rectangle{
			image.Rect(60, 200, 734, 900), image.Rect(60, 920, 734, 1020),
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			l, err := BuildLayout(tt.kind, testContext(LineItemSet{}), "Bengaluru, Karnataka")
			require.NoError(t, err)
			require.Len(t, l.Blocks, len(tt.frames))
			for i, b := range l.Blocks {
				assert.Equal(t, tt.frames[i], b.Frame, b.Name)
			}
			assert.Equal(t, "signature", l.Blocks[len(l.Blocks)-1].Name)
		})
	}
}

func TestBuildLayout_SignatureFields(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			l, err := BuildLayout(kind, testContext(LineItemSet{}), "")
			require.NoError(t, err)
			sig := l.Blocks[len(l.Blocks)-1]
			var contents []string
			for _, txt := range sig.Texts {
				contents = append(contents, txt.Content)
			}
			assert.Contains(t, contents, "Dr. Name: Dr. Meera Iyer")
			assert.Contains(t, contents, "Registration No: KMC-55231")
			assert.Contains(t, contents, "Date: 03/07/2025")
		})
	}
}

func TestBuildLayout_MissingFields(t *testing.T) {
	l, err := BuildLayout(KindPrescription, Context{Timestamp: fixedTime}, "")
	require.NoError(t, err)

	patient := l.Blocks[0]
	var contents []string
	for _, txt := range patient.Texts {
		contents = append(contents, txt.Content)
	}
	assert.Contains(t, contents, "Name: N/A")
	assert.Contains(t, contents, "Age: N/A")
}

func TestBuildLayout_Overflow(t *testing.T) {
	var tests []Test
	for i := 0; i < 25; i++ {
		tests = append(tests, Test{ID: string(rune('a' + i)), Name: "Test", Source: SourceLab, Price: 100})
	}
	l, err := BuildLayout(KindLaboratory, testContext(NewTestSet(tests)), "")
	require.NoError(t, err)

	block := l.Blocks[1]
	rows, overflow := 0, ""
	for _, txt := range block.Texts {
		switch txt.Role {
		case RoleLineItem:
			rows++
		case RoleOverflow:
			overflow = txt.Content
		}
		assert.LessOrEqual(t, txt.Y, block.Frame.Max.Y, txt.Content)
	}
	assert.Equal(t, 9, rows)
	assert.Equal(t, "+ 16 more", overflow)
}

func TestRenderToCanvas_BlockAnchor(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, PageWidth, PageHeight))
	err := testRenderer().RenderToCanvas(KindPrescription, testContext(LineItemSet{}), page)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{A: 0xff}, page.RGBAAt(60, 180))
	assert.Equal(t, color.RGBA{A: 0xff}, page.RGBAAt(733, 939))
	assert.Equal(t, color.RGBA{}, page.RGBAAt(400, 600))
}

func TestRenderToCanvas_MissingLogoCompletes(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, PageWidth, PageHeight))
	r := New(Assets{ClinicAddress: "Bengaluru, Karnataka", Logo: nil})

	require.NoError(t, r.RenderToCanvas(KindCertificate, testContext(LineItemSet{}), page))
	for x := 0; x < PageWidth; x += 7 {
		assert.Equal(t, color.RGBA{}, page.RGBAAt(x, LogoTop+LogoHeight/2))
	}
}

func TestRenderToCanvas_Logo(t *testing.T) {
	logo := redLogo()
	page := image.NewRGBA(image.Rect(0, 0, PageWidth, PageHeight))
	r := New(Assets{Logo: logo})

	require.NoError(t, r.RenderToCanvas(KindCertificate, testContext(LineItemSet{}), page))
	assert.Equal(t, image.Rect(337, 30, 457, 90), LogoRect(logo.Bounds()))

	l, err := r.Layout(KindCertificate, testContext(LineItemSet{}))
	require.NoError(t, err)
	assert.Equal(t, LogoRect(logo.Bounds()), l.Logo)

	got := page.RGBAAt(397, 60)
	assert.Greater(t, got.R, uint8(0xf0))
	assert.Greater(t, got.A, uint8(0xf0))
}

func TestRenderToCanvas_NilSurface(t *testing.T) {
	err := testRenderer().RenderToCanvas(KindPrescription, testContext(LineItemSet{}), nil)
	assert.ErrorIs(t, err, ErrNoCanvas)
}
