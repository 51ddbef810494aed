package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) GetByID(ctx context.Context, appointmentID string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).First(&appointment, "appointment_id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appointment, err
}

func (r *appointmentRepository) GetByIDs(ctx context.Context, appointmentIDs []string) ([]entity.Appointment, error) {
	if len(appointmentIDs) == 0 {
		return nil, nil
	}
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("appointment_id IN ?", appointmentIDs).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) ListByDoctorOn(ctx context.Context, doctorID int64, day time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Scopes(DoctorScope(doctorID)).
		Where("date = ?", day.Format("2006-01-02")).
		Order("time ASC").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) ListRecent(ctx context.Context, limit int) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(limit).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, mrno string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("mrno = ?", mrno).
		Order("date DESC").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).Order("date DESC").Find(&appointments).Error
	return appointments, err
}
