package repository

import (
	"context"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
)

// CatalogRepository defines read access to the medicine and test catalogs
type CatalogRepository interface {
	SearchMedicines(ctx context.Context, term string, limit int) ([]entity.Medicine, error)
	SearchLabTests(ctx context.Context, term string, limit int) ([]entity.LabTest, error)
	SearchRadiology(ctx context.Context, term string, limit int) ([]entity.RadiologyService, error)
	FindMedicines(ctx context.Context, ids []int64) ([]entity.Medicine, error)
	FindLabTests(ctx context.Context, ids []int64) ([]entity.LabTest, error)
	FindRadiology(ctx context.Context, ids []int64) ([]entity.RadiologyService, error)
}
