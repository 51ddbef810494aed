package entity

import (
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/enum"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bill is an outpatient bill for a single service line
type Bill struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	BillNumber         string             `gorm:"size:32;uniqueIndex;not null" json:"bill_number"`
	PatientMRNo        string             `gorm:"column:patient_mrno;size:64;not null;index" json:"patient_mrno"`
	AppointmentID      *string            `gorm:"size:64;index" json:"appointment_id,omitempty"`
	ServiceCategory    string             `gorm:"size:64" json:"service_category"`
	ServiceName        string             `gorm:"size:255;not null" json:"service_name"`
	ServiceDescription *string            `gorm:"type:text" json:"service_description,omitempty"`
	BillingDepartment  string             `gorm:"size:64" json:"billing_department"`
	DoctorID           *int64             `gorm:"index" json:"doctor_id,omitempty"`
	DoctorName         string             `gorm:"size:255" json:"doctor_name"`
	CreatedByStaffName string             `gorm:"size:255" json:"created_by_staff_name"`
	UnitPrice          float64            `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Quantity           int                `gorm:"not null;default:1" json:"quantity"`
	DiscountPercent    float64            `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	TaxPercent         float64            `gorm:"type:decimal(5,2);default:0" json:"tax_percent"`
	Subtotal           float64            `gorm:"type:decimal(15,2);default:0" json:"subtotal"`
	DiscountAmount     float64            `gorm:"type:decimal(15,2);default:0" json:"discount_amount"`
	TaxAmount          float64            `gorm:"type:decimal(15,2);default:0" json:"tax_amount"`
	TotalAmount        float64            `gorm:"type:decimal(15,2);default:0" json:"total_amount"`
	PaidAmount         float64            `gorm:"type:decimal(15,2);default:0" json:"paid_amount"`
	BalanceDue         float64            `gorm:"type:decimal(15,2);default:0" json:"balance_due"`
	PaymentStatus      enum.PaymentStatus `gorm:"size:32;default:pending;index" json:"payment_status"`
	PaymentMethod      *string            `gorm:"size:32" json:"payment_method,omitempty"`
	DueDate            time.Time          `gorm:"type:date" json:"due_date"`
	BillStatus         enum.BillStatus    `gorm:"size:32;default:active" json:"bill_status"`
	BillDate           time.Time          `gorm:"not null" json:"bill_date"`
	ServiceDate        time.Time          `gorm:"type:date" json:"service_date"`
	Notes              *string            `gorm:"type:text" json:"notes,omitempty"`
	PaidDate           *time.Time         `json:"paid_date,omitempty"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	CancellationReason *string            `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps balance_due in step with the total and the amount paid
func (b *Bill) BeforeSave(tx *gorm.DB) error {
	b.SyncBalance()
	return nil
}

// SyncBalance recomputes BalanceDue from TotalAmount and PaidAmount
func (b *Bill) SyncBalance() {
	b.BalanceDue = billing.RoundMoney(b.TotalAmount - b.PaidAmount)
}

// ApplyAmounts copies computed amounts onto the bill
func (b *Bill) ApplyAmounts(a billing.Amounts) {
	b.Subtotal, b.DiscountAmount, b.TaxAmount, b.TotalAmount = a.Floats()
	b.SyncBalance()
}

// IsOverdue reports whether the bill is still pending after its due date
func (b *Bill) IsOverdue(today time.Time) bool {
	if b.PaymentStatus != enum.PaymentStatusPending {
		return false
	}
	return b.DueDate.Format("2006-01-02") < today.Format("2006-01-02")
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "opbilling"
}
