package formrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/Alexrusso3108/cura-doctors-portal/pkg/billing"
)

// Page geometry, in pixels of an A4 page at 96 dpi.
const (
	PageWidth  = 794
	PageHeight = 1123

	BlockX      = 60
	BlockWidth  = 674
	BodyX       = 75
	BorderWidth = 2

	headingOffset = 25
	centerX       = PageWidth / 2
	blockPadding  = 10
)

// Logo slot: the logo is scaled to LogoHeight and centered horizontally.
const (
	LogoTop    = 30
	LogoHeight = 60
)

const (
	DateLayout = "01/02/2006"
	TimeLayout = "03:04 PM"

	missingValue = "N/A"
)

// Placeholders printed when a form has no line items.
const (
	NoMedicinesText = "No medicines prescribed yet. Use the search bar above to add medicines."
	NoTestsText     = "No tests selected yet. Use the search bar above to add tests."
)

var ErrUnknownKind = errors.New("formrender: unknown form kind")

// Anchor is the horizontal alignment of a text relative to its X.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
)

// Role tags what a text is, so rows and placeholders can be told apart in
// every rendering.
type Role string

const (
	RoleTitle       Role = "title"
	RoleSubtitle    Role = "subtitle"
	RoleHeading     Role = "heading"
	RoleLabel       Role = "label"
	RoleLineItem    Role = "line-item"
	RoleLineDetail  Role = "line-detail"
	RolePlaceholder Role = "placeholder"
	RoleOverflow    Role = "overflow"
)

// Style is a font and fill.
type Style struct {
	Size   float64
	Bold   bool
	Italic bool
	Color  color.RGBA
}

// Hex formats the fill as #RRGGBB.
func (s Style) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", s.Color.R, s.Color.G, s.Color.B)
}

var (
	black = color.RGBA{A: 0xff}
	blue  = color.RGBA{R: 0x00, G: 0x66, B: 0xCC, A: 0xff}
	grey  = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	faint = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

	StyleBody        = Style{Size: 12, Color: black}
	StyleHeading     = Style{Size: 14, Bold: true, Color: black}
	StyleSubtitle    = Style{Size: 14, Color: black}
	StyleTitle       = Style{Size: 20, Bold: true, Color: blue}
	StyleDetail      = Style{Size: 10, Color: grey}
	StylePlaceholder = Style{Size: 12, Italic: true, Color: faint}
)

// Text is a single line drawn with its baseline at Y.
type Text struct {
	X       int
	Y       int
	Content string
	Style   Style
	Anchor  Anchor
	Role    Role
	// Source is set on test rows to "lab" or "radiology".
	Source string
}

// Block is a bordered region of the page.
type Block struct {
	Name  string
	Frame image.Rectangle
	Texts []Text
}

// Layout is the complete description of one rendered form.
type Layout struct {
	Kind   Kind
	Width  int
	Height int
	// Logo is the header slot a logo is drawn into. It is empty when the
	// clinic has no logo, and then neither rendering shows one.
	Logo   image.Rectangle
	Header []Text
	Blocks []Block
}

// LogoRect returns where a logo of the given size is drawn, or an empty
// rectangle when the logo has no area.
func LogoRect(logo image.Rectangle) image.Rectangle {
	if logo.Dx() <= 0 || logo.Dy() <= 0 {
		return image.Rectangle{}
	}
	w := logo.Dx() * LogoHeight / logo.Dy()
	x := (PageWidth - w) / 2
	return image.Rect(x, LogoTop, x+w, LogoTop+LogoHeight)
}

// BuildLayout lays out a form. It is a pure function of its arguments.
func BuildLayout(kind Kind, ctx Context, clinicAddress string) (*Layout, error) {
	build, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}

	l := &Layout{
		Kind:   kind,
		Width:  PageWidth,
		Height: PageHeight,
		Header: []Text{
			{X: centerX, Y: 105, Content: clinicAddress, Style: StyleSubtitle, Anchor: AnchorMiddle, Role: RoleSubtitle},
			{X: centerX, Y: 135, Content: kind.Title(), Style: StyleTitle, Anchor: AnchorMiddle, Role: RoleTitle},
		},
	}
	l.Blocks = build(fields(ctx), ctx.Items)
	return l, nil
}

var builders = map[Kind]func(f formFields, items LineItemSet) []Block{
	KindPrescription: prescriptionBlocks,
	KindConsultation: consultationBlocks,
	KindLaboratory:   laboratoryBlocks,
	KindCertificate:  certificateBlocks,
}

// formFields are the context values as printed.
type formFields struct {
	name, mrNo, age, gender, phone string
	doctor, regNo                  string
	date, time                     string
}

func fields(ctx Context) formFields {
	return formFields{
		name:   orMissing(ctx.Patient.Name),
		mrNo:   orMissing(ctx.Patient.MRNo),
		age:    orMissing(ctx.Patient.Age),
		gender: orMissing(ctx.Patient.Gender),
		phone:  orMissing(ctx.Patient.Phone),
		doctor: orMissing(ctx.Doctor.Name),
		regNo:  orMissing(ctx.Doctor.RegistrationNo),
		date:   ctx.Timestamp.Format(DateLayout),
		time:   ctx.Timestamp.Format(TimeLayout),
	}
}

func (f formFields) ageYears() string {
	if f.age == missingValue {
		return f.age
	}
	return f.age + " years"
}

func orMissing(s string) string {
	if s == "" {
		return missingValue
	}
	return s
}

func newBlock(name string, top, height int, heading string) Block {
	b := Block{Name: name, Frame: image.Rect(BlockX, top, BlockX+BlockWidth, top+height)}
	if heading != "" {
		b.Texts = append(b.Texts, Text{X: BodyX, Y: top + headingOffset, Content: heading, Style: StyleHeading, Role: RoleHeading})
	}
	return b
}

func (b *Block) label(x, y int, content string) {
	b.Texts = append(b.Texts, Text{X: x, Y: y, Content: content, Style: StyleBody, Role: RoleLabel})
}

func signatureBlock(top int, f formFields) Block {
	b := newBlock("signature", top, 100, "DOCTOR'S SIGNATURE")
	b.label(BodyX, top+50, "Dr. Name: "+f.doctor)
	b.label(400, top+50, "Registration No: "+f.regNo)
	b.label(BodyX, top+80, "Signature: _______________________")
	b.label(400, top+80, "Date: "+f.date)
	return b
}

const (
	itemX       = 85
	itemDetailX = 100

	medicineTop  = 395
	medicineStep = 90
	medicineSpan = 60

	testTop  = 355
	testStep = 35
	testSpan = 15
)

func prescriptionBlocks(f formFields, items LineItemSet) []Block {
	patient := newBlock("patient", 180, 140, "PATIENT INFORMATION")
	patient.label(BodyX, 235, "Name: "+f.name)
	patient.label(340, 235, "Age: "+f.ageYears())
	patient.label(540, 235, "Gender: "+f.gender)
	patient.label(BodyX, 260, "MR No: "+f.mrNo)
	patient.label(540, 260, "Date: "+f.date)
	patient.label(BodyX, 285, "Phone: "+f.phone)

	meds := newBlock("medicines", 340, 600, "PRESCRIPTION")
	medicines := items.Medicines()
	if len(medicines) == 0 {
		meds.Texts = append(meds.Texts, placeholder(medicineTop, NoMedicinesText))
	} else {
		shown, more := fit(len(medicines), meds.Frame, medicineTop, medicineStep, medicineSpan)
		for i, m := range medicines[:shown] {
			y := medicineTop + i*medicineStep
			meds.Texts = append(meds.Texts, Text{X: itemX, Y: y, Content: strconv.Itoa(i+1) + ". " + m.Name, Style: StyleBody, Role: RoleLineItem})
			for j, sub := range []struct{ label, value string }{
				{"Dosage: ", m.Dosage},
				{"Duration: ", m.Duration},
				{"Instructions: ", m.Instructions},
			} {
				if sub.value == "" {
					continue
				}
				meds.Texts = append(meds.Texts, Text{X: itemDetailX, Y: y + 20*(j+1), Content: sub.label + sub.value, Style: StyleBody, Role: RoleLineDetail})
			}
		}
		if more > 0 {
			meds.Texts = append(meds.Texts, overflow(medicineTop+shown*medicineStep, more))
		}
	}

	return []Block{patient, meds, signatureBlock(960, f)}
}

func consultationBlocks(f formFields, _ LineItemSet) []Block {
	patient := newBlock("patient", 180, 80, "PATIENT INFORMATION")
	patient.label(BodyX, 230, "Name: "+f.name)
	patient.label(400, 230, "MR No: "+f.mrNo)
	patient.label(BodyX, 250, "Date: "+f.date)
	patient.label(400, 250, "Time: "+f.time)

	return []Block{
		patient,
		newBlock("chief_complaint", 280, 100, "CHIEF COMPLAINT"),
		newBlock("history", 400, 120, "HISTORY OF PRESENT ILLNESS"),
		newBlock("physical_examination", 540, 120, "PHYSICAL EXAMINATION"),
		newBlock("diagnosis", 680, 120, "DIAGNOSIS"),
		signatureBlock(820, f),
	}
}

func laboratoryBlocks(f formFields, items LineItemSet) []Block {
	patient := newBlock("patient", 180, 100, "PATIENT INFORMATION")
	patient.label(BodyX, 230, "Name: "+f.name)
	patient.label(340, 230, "Age: "+f.age)
	patient.label(540, 230, "Gender: "+f.gender)
	patient.label(BodyX, 255, "MR No: "+f.mrNo)
	patient.label(540, 255, "Date: "+f.date)

	requested := newBlock("tests", 300, 400, "REQUESTED TESTS")
	tests := items.Tests()
	if len(tests) == 0 {
		requested.Texts = append(requested.Texts, placeholder(testTop, NoTestsText))
	} else {
		shown, more := fit(len(tests), requested.Frame, testTop, testStep, testSpan)
		for i, t := range tests[:shown] {
			y := testTop + i*testStep
			requested.Texts = append(requested.Texts,
				Text{X: itemX, Y: y, Content: "[x] " + t.Name, Style: StyleBody, Role: RoleLineItem, Source: string(t.Source)},
				Text{X: 95, Y: y + testSpan, Content: fmt.Sprintf("(%s) - Rs. %s", t.Source.Label(), billing.FormatMoney(t.Price)), Style: StyleDetail, Role: RoleLineDetail, Source: string(t.Source)},
			)
		}
		if more > 0 {
			requested.Texts = append(requested.Texts, overflow(testTop+shown*testStep, more))
		}
	}

	return []Block{
		patient,
		requested,
		newBlock("clinical_history", 720, 100, "CLINICAL HISTORY"),
		signatureBlock(840, f),
	}
}

func certificateBlocks(f formFields, _ LineItemSet) []Block {
	body := newBlock("certificate", 200, 700, "")
	body.label(80, 240, "This is to certify that")
	body.label(80, 280, "Mr./Ms. "+f.name)
	body.label(80, 310, "Age: "+f.ageYears()+", Gender: "+f.gender)
	body.label(80, 340, "MR No: "+f.mrNo)
	body.label(80, 400, "was examined by me on _________________ and found to be")
	body.label(80, 750, "He/She is advised rest for _______ days from _______ to _______")

	return []Block{body, signatureBlock(920, f)}
}

func placeholder(y int, content string) Text {
	return Text{X: itemX, Y: y, Content: content, Style: StylePlaceholder, Role: RolePlaceholder}
}

func overflow(y, n int) Text {
	return Text{X: itemX, Y: y, Content: fmt.Sprintf("+ %d more", n), Style: StylePlaceholder, Role: RoleOverflow}
}

// fit returns how many of n entries are drawn inside frame and how many are
// folded into a "+ N more" line that takes the last slot.
func fit(n int, frame image.Rectangle, top, step, span int) (shown, more int) {
	slots := 0
	for y := top; y+span <= frame.Max.Y-blockPadding; y += step {
		slots++
	}
	if n <= slots {
		return n, 0
	}
	if slots == 0 {
		return 0, n
	}
	shown = slots - 1
	return shown, n - shown
}
