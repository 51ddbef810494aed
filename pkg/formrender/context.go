// Package formrender draws the clinic's medical form templates.
//
// A form is described once as a Layout of bordered blocks and positioned
// texts. The same Layout is rendered as an SVG preview and onto a raster
// page, so the preview a doctor annotates matches the image that is saved.
package formrender

import (
	"fmt"
	"time"
)

// Kind identifies a form template.
type Kind string

const (
	KindPrescription Kind = "prescription"
	KindConsultation Kind = "consultation"
	KindLaboratory   Kind = "laboratory"
	KindCertificate  Kind = "certificate"
)

var kindTitles = map[Kind]string{
	KindPrescription: "PRESCRIPTION",
	KindConsultation: "CONSULTATION NOTES",
	KindLaboratory:   "LABORATORY REQUEST",
	KindCertificate:  "MEDICAL CERTIFICATE",
}

// Kinds lists every supported form kind in display order.
func Kinds() []Kind {
	return []Kind{KindPrescription, KindConsultation, KindLaboratory, KindCertificate}
}

// ParseKind validates s as a form kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) IsValid() bool {
	_, ok := kindTitles[k]
	return ok
}

// Title is the heading printed at the top of the page.
func (k Kind) Title() string {
	return kindTitles[k]
}

func (k Kind) String() string {
	return string(k)
}

// Patient is the identity block printed on every form.
type Patient struct {
	Name   string
	MRNo   string
	Age    string
	Gender string
	Phone  string
}

// Doctor is the signing doctor.
type Doctor struct {
	Name           string
	RegistrationNo string
}

// Context is everything a form template reads. Timestamp is fixed by the
// caller so that rendering never reads the clock.
type Context struct {
	Patient   Patient
	Doctor    Doctor
	Timestamp time.Time
	Items     LineItemSet
}

// Medicine is one prescribed medicine.
type Medicine struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// SourceKind tells where a requested test is performed.
type SourceKind string

const (
	SourceLab       SourceKind = "lab"
	SourceRadiology SourceKind = "radiology"
)

// Label is the human readable source name.
func (s SourceKind) Label() string {
	if s == SourceRadiology {
		return "Radiology"
	}
	return "Lab Test"
}

// Test is one requested laboratory or radiology test.
type Test struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Source SourceKind `json:"type"`
	Price  float64    `json:"price"`
}

// LineItemSet is an immutable list of medicines or tests. The zero value is
// an empty set.
type LineItemSet struct {
	medicines []Medicine
	tests     []Test
}

// NewMedicineSet copies medicines into a set, keeping their order.
func NewMedicineSet(medicines []Medicine) LineItemSet {
	return LineItemSet{medicines: append([]Medicine(nil), medicines...)}
}

// NewTestSet copies tests into a set. A test repeated with the same ID and
// source is kept once. Lab tests come before radiology tests and the input
// order is kept inside each group.
func NewTestSet(tests []Test) LineItemSet {
	type key struct {
		id     string
		source SourceKind
	}
	seen := make(map[key]struct{}, len(tests))
	var lab, other []Test
	for _, t := range tests {
		if t.Source == "" {
			t.Source = SourceLab
		}
		k := key{t.ID, t.Source}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if t.Source == SourceLab {
			lab = append(lab, t)
		} else {
			other = append(other, t)
		}
	}
	return LineItemSet{tests: append(lab, other...)}
}

// Medicines returns a copy of the medicines in the set.
func (s LineItemSet) Medicines() []Medicine {
	return append([]Medicine(nil), s.medicines...)
}

// Tests returns a copy of the tests in the set.
func (s LineItemSet) Tests() []Test {
	return append([]Test(nil), s.tests...)
}

// Len is the number of items in the set.
func (s LineItemSet) Len() int {
	return len(s.medicines) + len(s.tests)
}
