package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicalForm is a saved, flattened form image
type MedicalForm struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FormType      string    `gorm:"size:32;not null;index" json:"form_type"`
	AppointmentID *string   `gorm:"size:64;index" json:"appointment_id,omitempty"`
	PatientID     *string   `gorm:"size:64;index" json:"patient_id,omitempty"`
	DoctorID      *int64    `gorm:"index" json:"doctor_id,omitempty"`
	ImageRef      string    `gorm:"size:512;not null" json:"-"`
	ImageSize     int64     `json:"image_size"`
	ContentType   string    `gorm:"size:64" json:"content_type"`
	CreatedAt     time.Time `json:"created_at"`

	// Relationships
	Medicines []PrescribedMedicine `gorm:"foreignKey:FormID" json:"medicines,omitempty"`
	Tests     []PrescribedTest     `gorm:"foreignKey:FormID" json:"tests,omitempty"`
}

// BeforeCreate generates a UUID before creating a new form
func (f *MedicalForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MedicalForm model
func (MedicalForm) TableName() string {
	return "medical_forms"
}

// PrescribedMedicine is a medicine line of a saved prescription
type PrescribedMedicine struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FormID        uuid.UUID `gorm:"type:uuid;not null;index" json:"form_id"`
	AppointmentID *string   `gorm:"size:64" json:"appointment_id,omitempty"`
	PatientID     *string   `gorm:"size:64" json:"patient_id,omitempty"`
	DoctorID      *int64    `json:"doctor_id,omitempty"`
	MedicineID    string    `gorm:"size:64" json:"medicine_id"`
	MedicineName  string    `gorm:"size:255;not null" json:"medicine_name"`
	Dosage        string    `gorm:"size:120" json:"dosage"`
	Duration      string    `gorm:"size:120" json:"duration"`
	Instructions  string    `gorm:"type:text" json:"instructions"`
	CreatedAt     time.Time `json:"created_at"`
}

func (m *PrescribedMedicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PrescribedMedicine model
func (PrescribedMedicine) TableName() string {
	return "prescribed_medicines"
}

// PrescribedTest is a test line of a saved laboratory request
type PrescribedTest struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FormID        uuid.UUID `gorm:"type:uuid;not null;index" json:"form_id"`
	AppointmentID *string   `gorm:"size:64" json:"appointment_id,omitempty"`
	PatientID     *string   `gorm:"size:64" json:"patient_id,omitempty"`
	DoctorID      *int64    `json:"doctor_id,omitempty"`
	TestID        string    `gorm:"size:64" json:"test_id"`
	TestName      string    `gorm:"size:255;not null" json:"test_name"`
	TestType      string    `gorm:"size:32" json:"test_type"`
	Price         float64   `gorm:"type:decimal(15,2);default:0" json:"price"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t *PrescribedTest) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PrescribedTest model
func (PrescribedTest) TableName() string {
	return "prescribed_tests"
}
