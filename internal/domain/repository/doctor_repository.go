package repository

import (
	"context"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
)

// DoctorRepository defines the interface for doctor data operations
type DoctorRepository interface {
	Create(ctx context.Context, doctor *entity.Doctor) error
	GetByID(ctx context.Context, doctorID int64) (*entity.Doctor, error)
	List(ctx context.Context) ([]entity.Doctor, error)
	Count(ctx context.Context) (int64, error)
}
