package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/enum"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/billing"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/events"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/metrics"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/pagination"
)

// BillingOptions are the clinic's billing defaults
type BillingOptions struct {
	DueDays            int
	MaxNumberAttempts  int
	DefaultCategory    string
	DefaultDepartment  string
	CreatedByStaffName string
	Location           *time.Location
}

// BillingService creates and settles outpatient bills
type BillingService struct {
	billRepo        repository.BillRepository
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	ids             *billing.IdentifierGenerator
	opts            BillingOptions
	metrics         *metrics.Metrics
	notifier        notifier
	logger          *zap.Logger
	tracer          trace.Tracer
	now             func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(
	billRepo repository.BillRepository,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	ids *billing.IdentifierGenerator,
	opts BillingOptions,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BillingService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxNumberAttempts < 1 {
		opts.MaxNumberAttempts = 1
	}
	return &BillingService{
		billRepo:        billRepo,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		ids:             ids,
		opts:            opts,
		metrics:         m,
		notifier:        notifier{publisher: publisher, metrics: m, logger: logger},
		logger:          logger,
		tracer:          otel.Tracer("billing-service"),
		now:             time.Now,
	}
}

// AmountsInput is the raw line as typed into the bill form
type AmountsInput struct {
	UnitPrice       string
	Quantity        string
	DiscountPercent string
	TaxPercent      string
}

func (in AmountsInput) lineItem() billing.LineItem {
	return billing.ParseLineItem(in.UnitPrice, in.Quantity, in.DiscountPercent, in.TaxPercent)
}

// PreviewAmounts recomputes the derived amounts for the form as it is edited
func (s *BillingService) PreviewAmounts(in AmountsInput) billing.AmountsView {
	return in.lineItem().Compute().View()
}

// CreateBillInput represents the bill form
type CreateBillInput struct {
	AmountsInput
	PatientMRNo        string
	AppointmentID      string
	ServiceCategory    string
	ServiceName        string
	ServiceDescription string
	BillingDepartment  string
	DoctorID           *int64
	PaymentMethod      string
	DueDate            *time.Time
	Notes              string
	// SubmittedBy is the signed-in doctor
	SubmittedBy int64
}

// CreateBill validates the form, computes the amounts and stores the bill
// under a fresh bill number
func (s *BillingService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	ctx, span := s.tracer.Start(ctx, "BillingService.CreateBill")
	defer span.End()

	bill, err := s.newBill(ctx, input)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.insertWithNumber(ctx, bill); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create bill")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("bill.number", bill.BillNumber),
		attribute.String("bill.patient_mrno", bill.PatientMRNo))

	if s.metrics != nil {
		s.metrics.BillsCreated.Inc()
	}
	s.logger.Info("bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.Int64("submitted_by", input.SubmittedBy))

	s.notifier.publish(ctx, events.New(events.TypeBillCreated, bill.ID.String(), 0, s.now(), billEventPayload(bill)))

	return bill, nil
}

func (s *BillingService) newBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	bill := &entity.Bill{
		PatientMRNo:        strings.TrimSpace(input.PatientMRNo),
		ServiceCategory:    orDefault(input.ServiceCategory, s.opts.DefaultCategory),
		ServiceName:        strings.TrimSpace(input.ServiceName),
		ServiceDescription: optionalString(input.ServiceDescription),
		BillingDepartment:  orDefault(input.BillingDepartment, s.opts.DefaultDepartment),
		DoctorID:           input.DoctorID,
		CreatedByStaffName: s.opts.CreatedByStaffName,
		PaymentStatus:      enum.PaymentStatusPending,
		PaymentMethod:      optionalString(input.PaymentMethod),
		BillStatus:         enum.BillStatusActive,
		Notes:              optionalString(input.Notes),
	}

	var fieldErrors []apperror.FieldError

	if id := strings.TrimSpace(input.AppointmentID); id != "" {
		appointment, err := s.appointmentRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load appointment: %w", err)
		}
		if appointment == nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "appointment_id", Message: "Appointment not found"})
		} else {
			bill.AppointmentID = &appointment.AppointmentID
			if bill.PatientMRNo == "" {
				bill.PatientMRNo = appointment.MRNo
			}
			if bill.DoctorID == nil && appointment.DoctorID != 0 {
				doctorID := appointment.DoctorID
				bill.DoctorID = &doctorID
			}
		}
	}

	if bill.DoctorID != nil {
		doctor, err := s.doctorRepo.GetByID(ctx, *bill.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("load doctor: %w", err)
		}
		if doctor == nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "doctor_id", Message: "Doctor not found"})
		} else {
			bill.DoctorName = doctor.Name
		}
	}

	if bill.PatientMRNo == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "patient_mrno", Message: "Patient MR number is required"})
	}
	if bill.ServiceName == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "service_name", Message: "Service name is required"})
	}
	if strings.TrimSpace(input.UnitPrice) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "unit_price", Message: "Unit price is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	line := input.lineItem()
	bill.UnitPrice = line.UnitPrice
	bill.Quantity = line.Quantity
	bill.DiscountPercent = line.DiscountPercent
	bill.TaxPercent = line.TaxPercent
	bill.ApplyAmounts(line.Compute())

	now := s.now().In(s.opts.Location)
	today := dateOnly(now)
	bill.BillDate = now
	bill.ServiceDate = today
	bill.DueDate = today.AddDate(0, 0, s.opts.DueDays)
	if input.DueDate != nil {
		bill.DueDate = dateOnly(*input.DueDate)
	}

	return bill, nil
}

// insertWithNumber draws bill numbers until one is free. A number can be
// taken between the check and the insert, so a unique violation on insert
// also counts as a collision.
func (s *BillingService) insertWithNumber(ctx context.Context, bill *entity.Bill) error {
	for attempt := 1; attempt <= s.opts.MaxNumberAttempts; attempt++ {
		number := s.ids.Next(bill.ServiceDate)

		exists, err := s.billRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return fmt.Errorf("check bill number: %w", err)
		}
		if !exists {
			bill.BillNumber = number
			err = s.billRepo.Create(ctx, bill)
			if err == nil {
				return nil
			}
			if !errors.Is(err, repository.ErrDuplicateKey) {
				return fmt.Errorf("create bill: %w", err)
			}
		}

		if s.metrics != nil {
			s.metrics.BillNumberCollisions.Inc()
		}
		s.logger.Warn("bill number collision", zap.String("bill_number", number), zap.Int("attempt", attempt))
	}
	return apperror.NewConflictError("Could not allocate a unique bill number, please try again")
}

// ListBillsInput holds the bill list filters
type ListBillsInput struct {
	Status     string
	Search     string
	Pagination *pagination.PaginationParams
}

// ListBills returns bills newest first
func (s *BillingService) ListBills(ctx context.Context, input *ListBillsInput) (*pagination.PaginatedResult[entity.Bill], error) {
	params := &repository.BillFilterParams{
		Pagination: input.Pagination,
		Search:     strings.TrimSpace(input.Search),
	}
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	if st := strings.TrimSpace(input.Status); st != "" && st != "all" {
		status := enum.PaymentStatus(st)
		if !status.IsValid() {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "status", Message: "Unknown payment status"}})
		}
		params.Status = &status
	}

	bills, total, err := s.billRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	return pagination.NewPaginatedResult(bills,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// GetStats summarises all bills as of today
func (s *BillingService) GetStats(ctx context.Context) (*repository.BillStats, error) {
	stats, err := s.billRepo.Stats(ctx, dateOnly(s.now().In(s.opts.Location)))
	if err != nil {
		return nil, fmt.Errorf("bill stats: %w", err)
	}
	return stats, nil
}

// GetBill returns a bill by id
func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load bill: %w", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// RecordPaymentInput is a payment taken against a bill
type RecordPaymentInput struct {
	Amount      float64
	Method      string
	SubmittedBy int64
}

// RecordPayment adds a payment. The bill becomes paid once nothing is due
// and partially paid before that. Overpayment is rejected.
func (s *BillingService) RecordPayment(ctx context.Context, id uuid.UUID, input *RecordPaymentInput) (*entity.Bill, error) {
	amount := billing.RoundMoney(input.Amount)
	if amount <= 0 || math.IsNaN(input.Amount) {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "amount", Message: "Amount must be greater than zero"}})
	}

	bill, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.BillStatus == enum.BillStatusCancelled {
		return nil, apperror.NewConflictError("Bill is cancelled")
	}
	if bill.PaymentStatus == enum.PaymentStatusPaid {
		return nil, apperror.NewConflictError("Bill is already paid")
	}
	if amount > bill.BalanceDue {
		return nil, apperror.NewValidationError([]apperror.FieldError{{
			Field:   "amount",
			Message: "Amount exceeds the balance due of " + billing.FormatMoney(bill.BalanceDue),
		}})
	}

	bill.PaidAmount = billing.RoundMoney(bill.PaidAmount + amount)
	bill.SyncBalance()
	if method := strings.TrimSpace(input.Method); method != "" {
		bill.PaymentMethod = &method
	}
	if bill.BalanceDue <= 0 {
		paidAt := s.now()
		bill.PaymentStatus = enum.PaymentStatusPaid
		bill.PaidDate = &paidAt
	} else {
		bill.PaymentStatus = enum.PaymentStatusPartiallyPaid
	}

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Inc()
	}
	s.logger.Info("payment recorded",
		zap.String("bill_number", bill.BillNumber),
		zap.String("amount", billing.FormatMoney(amount)),
		zap.Int64("submitted_by", input.SubmittedBy))

	s.notifier.publish(ctx, events.New(events.TypePaymentRecorded, bill.ID.String(), 0, s.now(), billEventPayload(bill)))

	return bill, nil
}

// CancelBill voids an unpaid bill
func (s *BillingService) CancelBill(ctx context.Context, id uuid.UUID, reason string, submittedBy int64) (*entity.Bill, error) {
	bill, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.BillStatus == enum.BillStatusCancelled {
		return nil, apperror.NewConflictError("Bill is already cancelled")
	}
	if bill.PaymentStatus == enum.PaymentStatusPaid {
		return nil, apperror.NewConflictError("Paid bills cannot be cancelled")
	}

	cancelledAt := s.now()
	bill.BillStatus = enum.BillStatusCancelled
	bill.PaymentStatus = enum.PaymentStatusCancelled
	bill.CancelledAt = &cancelledAt
	bill.CancellationReason = optionalString(reason)

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}

	s.logger.Info("bill cancelled", zap.String("bill_number", bill.BillNumber), zap.Int64("submitted_by", submittedBy))
	s.notifier.publish(ctx, events.New(events.TypeBillCancelled, bill.ID.String(), 0, s.now(), billEventPayload(bill)))

	return bill, nil
}

type billEvent struct {
	BillNumber    string             `json:"bill_number"`
	PatientMRNo   string             `json:"patient_mrno"`
	TotalAmount   string             `json:"total_amount"`
	BalanceDue    string             `json:"balance_due"`
	PaymentStatus enum.PaymentStatus `json:"payment_status"`
}

func billEventPayload(b *entity.Bill) billEvent {
	return billEvent{
		BillNumber:    b.BillNumber,
		PatientMRNo:   b.PatientMRNo,
		TotalAmount:   billing.FormatMoney(b.TotalAmount),
		BalanceDue:    billing.FormatMoney(b.BalanceDue),
		PaymentStatus: b.PaymentStatus,
	}
}

// dateOnly is midnight UTC of t's calendar day, the form date columns hold
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
