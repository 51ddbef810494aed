package repository

import (
	"context"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

// searchByName applies the shared name filter, ordering and limit
func (r *catalogRepository) searchByName(ctx context.Context, term string, limit int) *gorm.DB {
	query := r.db.WithContext(ctx).Scopes(ContainsAny(term, "name"))
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query.Order("name ASC")
}

func (r *catalogRepository) SearchMedicines(ctx context.Context, term string, limit int) ([]entity.Medicine, error) {
	var medicines []entity.Medicine
	err := r.searchByName(ctx, term, limit).Find(&medicines).Error
	return medicines, err
}

func (r *catalogRepository) SearchLabTests(ctx context.Context, term string, limit int) ([]entity.LabTest, error) {
	var tests []entity.LabTest
	err := r.searchByName(ctx, term, limit).Find(&tests).Error
	return tests, err
}

func (r *catalogRepository) SearchRadiology(ctx context.Context, term string, limit int) ([]entity.RadiologyService, error) {
	var services []entity.RadiologyService
	err := r.searchByName(ctx, term, limit).Find(&services).Error
	return services, err
}

func (r *catalogRepository) FindMedicines(ctx context.Context, ids []int64) ([]entity.Medicine, error) {
	var medicines []entity.Medicine
	if len(ids) == 0 {
		return medicines, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&medicines).Error
	return medicines, err
}

func (r *catalogRepository) FindLabTests(ctx context.Context, ids []int64) ([]entity.LabTest, error) {
	var tests []entity.LabTest
	if len(ids) == 0 {
		return tests, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tests).Error
	return tests, err
}

func (r *catalogRepository) FindRadiology(ctx context.Context, ids []int64) ([]entity.RadiologyService, error) {
	var services []entity.RadiologyService
	if len(ids) == 0 {
		return services, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&services).Error
	return services, err
}
