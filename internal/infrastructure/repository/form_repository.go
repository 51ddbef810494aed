package repository

import (
	"context"
	"errors"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type formRepository struct {
	db *gorm.DB
}

// NewFormRepository creates a new medical form repository
func NewFormRepository(db *gorm.DB) domainRepo.FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) CreateWithLineItems(ctx context.Context, form *entity.MedicalForm) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		medicines, tests := form.Medicines, form.Tests
		if err := tx.Omit(clause.Associations).Create(form).Error; err != nil {
			return err
		}
		for i := range medicines {
			medicines[i].FormID = form.ID
		}
		for i := range tests {
			tests[i].FormID = form.ID
		}
		if len(medicines) > 0 {
			if err := tx.Create(&medicines).Error; err != nil {
				return err
			}
		}
		if len(tests) > 0 {
			if err := tx.Create(&tests).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *formRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.MedicalForm, error) {
	var form entity.MedicalForm
	err := r.db.WithContext(ctx).
		Preload("Medicines").
		Preload("Tests").
		First(&form, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &form, err
}

func (r *formRepository) List(ctx context.Context, doctorID int64, formType string) ([]entity.MedicalForm, error) {
	var forms []entity.MedicalForm
	query := r.db.WithContext(ctx).Scopes(DoctorScope(doctorID))
	if formType != "" {
		query = query.Where("form_type = ?", formType)
	}
	err := query.Order("created_at DESC").Find(&forms).Error
	return forms, err
}
