package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/enum"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/pagination"
	"github.com/google/uuid"
)

// ErrDuplicateKey is returned when an insert hits a unique constraint
var ErrDuplicateKey = errors.New("duplicate key")

// BillRepository defines the interface for outpatient bill data operations
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) error
	ExistsByNumber(ctx context.Context, billNumber string) (bool, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	ListByPatient(ctx context.Context, mrno string) ([]entity.Bill, error)
	// DistinctPatientMRNos returns every MR number that appears on a bill
	DistinctPatientMRNos(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, today time.Time) (*BillStats, error)
}

// BillFilterParams contains filtering parameters for bill queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.PaymentStatus
}

// BillStats summarises all bills
type BillStats struct {
	TotalBills    int64   `json:"total_bills"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
	OverdueAmount float64 `json:"overdue_amount"`
	OverdueBills  int64   `json:"overdue_bills"`
}
