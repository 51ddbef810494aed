package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Appointment statuses written by the booking apps
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment is a booked visit. Rows are written by the booking apps; the
// portal only reads them.
type Appointment struct {
	AppointmentID     string    `gorm:"column:appointment_id;primaryKey;size:64" json:"appointment_id"`
	MRNo              string    `gorm:"column:mrno;size:64;index" json:"mrno"`
	PatientName       string    `gorm:"size:255" json:"patient_name"`
	PatientPhone      string    `gorm:"size:32" json:"patient_phone"`
	Date              time.Time `gorm:"type:date;index" json:"date"`
	Time              string    `gorm:"size:20" json:"time"`
	DoctorID          int64     `gorm:"index" json:"doctor_id"`
	Status            string    `gorm:"size:32" json:"status"`
	MobileBookingData *string   `gorm:"type:jsonb" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName returns the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// BookingData is the patient detail captured by the mobile booking app
type BookingData struct {
	PatientName   string `json:"patient_name"`
	PatientEmail  string `json:"patient_email"`
	PatientPhone  string `json:"patient_phone"`
	PatientAge    string `json:"patient_age"`
	PatientGender string `json:"patient_gender"`
}

// Booking decodes the mobile booking data. Malformed data yields an empty
// value; numbers are accepted wherever a string is expected.
func (a *Appointment) Booking() BookingData {
	if a.MobileBookingData == nil || *a.MobileBookingData == "" {
		return BookingData{}
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(*a.MobileBookingData), &raw); err != nil {
		return BookingData{}
	}
	str := func(key string) string {
		switch v := raw[key].(type) {
		case nil:
			return ""
		case string:
			return v
		case float64:
			return fmt.Sprintf("%g", v)
		default:
			return fmt.Sprint(v)
		}
	}
	return BookingData{
		PatientName:   str("patient_name"),
		PatientEmail:  str("patient_email"),
		PatientPhone:  str("patient_phone"),
		PatientAge:    str("patient_age"),
		PatientGender: str("patient_gender"),
	}
}

// ResolvedPatientName is the stored patient name, falling back to the name
// captured at booking time
func (a *Appointment) ResolvedPatientName() string {
	if a.PatientName != "" {
		return a.PatientName
	}
	return a.Booking().PatientName
}

// IsOn reports whether the appointment falls on the calendar day of t
func (a *Appointment) IsOn(t time.Time) bool {
	return a.Date.Format("2006-01-02") == t.Format("2006-01-02")
}
