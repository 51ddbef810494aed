package repository

import (
	"context"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/google/uuid"
)

// FormRepository defines the interface for saved medical forms
type FormRepository interface {
	// CreateWithLineItems inserts the form and its medicines and tests in one
	// transaction
	CreateWithLineItems(ctx context.Context, form *entity.MedicalForm) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MedicalForm, error)
	// List returns a doctor's forms, latest first. An empty formType matches all.
	List(ctx context.Context, doctorID int64, formType string) ([]entity.MedicalForm, error)
}
