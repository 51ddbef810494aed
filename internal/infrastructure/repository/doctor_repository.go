package repository

import (
	"context"
	"errors"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"gorm.io/gorm"
)

type doctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *gorm.DB) domainRepo.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *entity.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

func (r *doctorRepository) GetByID(ctx context.Context, doctorID int64) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := r.db.WithContext(ctx).First(&doctor, "doctor_id = ?", doctorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &doctor, err
}

func (r *doctorRepository) List(ctx context.Context) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := r.db.WithContext(ctx).Order("name ASC").Find(&doctors).Error
	return doctors, err
}

func (r *doctorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Doctor{}).Count(&count).Error
	return count, err
}
