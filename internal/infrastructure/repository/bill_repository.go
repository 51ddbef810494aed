package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/enum"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	err := r.db.WithContext(ctx).Create(bill).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateKey
	}
	return err
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) Update(ctx context.Context, bill *entity.Bill) error {
	return r.db.WithContext(ctx).Save(bill).Error
}

func (r *billRepository) ExistsByNumber(ctx context.Context, billNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Where("bill_number = ?", billNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(ContainsAny(params.Search, "bill_number", "patient_mrno", "service_name", "doctor_name"))

	if params.Status != nil {
		query = query.Where("payment_status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("created_at DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) ListByPatient(ctx context.Context, mrno string) ([]entity.Bill, error) {
	var bills []entity.Bill
	err := r.db.WithContext(ctx).
		Where("patient_mrno = ?", mrno).
		Order("created_at DESC").
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) DistinctPatientMRNos(ctx context.Context) ([]string, error) {
	var mrnos []string
	err := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Distinct("patient_mrno").
		Where("patient_mrno <> ''").
		Pluck("patient_mrno", &mrnos).Error
	return mrnos, err
}

// Stats sums money collected on paid and part-paid bills, and the balance
// still owed on pending and part-paid ones. Cancelled bills count only in
// the total.
func (r *billRepository) Stats(ctx context.Context, today time.Time) (*domainRepo.BillStats, error) {
	var stats domainRepo.BillStats

	collected := []enum.PaymentStatus{enum.PaymentStatusPaid, enum.PaymentStatusPartiallyPaid}
	owing := []enum.PaymentStatus{enum.PaymentStatusPending, enum.PaymentStatusPartiallyPaid}
	day := today.Format("2006-01-02")

	err := r.db.WithContext(ctx).
		Model(&entity.Bill{}).
		Select(`COUNT(*) AS total_bills,
			COALESCE(SUM(CASE WHEN payment_status IN ? THEN paid_amount ELSE 0 END), 0) AS paid_amount,
			COALESCE(SUM(CASE WHEN payment_status IN ? THEN balance_due ELSE 0 END), 0) AS pending_amount,
			COALESCE(SUM(CASE WHEN payment_status IN ? AND due_date < ? THEN balance_due ELSE 0 END), 0) AS overdue_amount,
			COUNT(CASE WHEN payment_status IN ? AND due_date < ? THEN 1 END) AS overdue_bills`,
			collected, owing, owing, day, owing, day,
		).
		Find(&stats).Error

	if err != nil {
		return nil, err
	}
	return &stats, nil
}
