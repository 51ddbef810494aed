package repository

import (
	"context"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
)

// AppointmentRepository defines read access to booked appointments
type AppointmentRepository interface {
	GetByID(ctx context.Context, appointmentID string) (*entity.Appointment, error)
	// GetByIDs returns the appointments found among ids, in no particular order
	GetByIDs(ctx context.Context, appointmentIDs []string) ([]entity.Appointment, error)
	// ListByDoctorOn returns a doctor's appointments on the calendar day of day
	ListByDoctorOn(ctx context.Context, doctorID int64, day time.Time) ([]entity.Appointment, error)
	// ListRecent returns the latest appointments by date, at most limit
	ListRecent(ctx context.Context, limit int) ([]entity.Appointment, error)
	ListByPatient(ctx context.Context, mrno string) ([]entity.Appointment, error)
	// ListAll returns every appointment, latest first
	ListAll(ctx context.Context) ([]entity.Appointment, error)
}
