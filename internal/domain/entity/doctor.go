package entity

import "time"

// Doctor is a clinician who can sign in to the portal
type Doctor struct {
	DoctorID       int64     `gorm:"column:doctor_id;primaryKey;autoIncrement:false" json:"doctor_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Department     string    `gorm:"size:120" json:"department"`
	Specialization string    `gorm:"size:120" json:"specialization"`
	Email          *string   `gorm:"size:255" json:"email,omitempty"`
	Password       *string   `gorm:"size:255" json:"-"` // bcrypt hash, optional
	RegistrationNo string    `gorm:"column:registration_no;size:100" json:"registration_no"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the table name for the Doctor model
func (Doctor) TableName() string {
	return "doctors"
}

// HasPassword reports whether a local password hash is stored
func (d *Doctor) HasPassword() bool {
	return d.Password != nil && *d.Password != ""
}

// EmailAddress returns the email or an empty string
func (d *Doctor) EmailAddress() string {
	if d.Email == nil {
		return ""
	}
	return *d.Email
}
