package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/billing"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/printer"
)

// ErrPrintFailed wraps printer errors returned alongside a formatted receipt
var ErrPrintFailed = errors.New("receipt formatted but not printed")

// PrinterService formats bills as thermal receipts and prints them
type PrinterService struct {
	printer    printer.Printer
	billRepo   repository.BillRepository
	header     entity.ReceiptHeader
	paperWidth int
	loc        *time.Location
	logger     *zap.Logger
}

// NewPrinterService creates a new printer service
func NewPrinterService(
	p printer.Printer,
	billRepo repository.BillRepository,
	header entity.ReceiptHeader,
	paperWidth int,
	loc *time.Location,
	logger *zap.Logger,
) *PrinterService {
	if loc == nil {
		loc = time.UTC
	}
	return &PrinterService{
		printer:    p,
		billRepo:   billRepo,
		header:     header,
		paperWidth: paperWidth,
		loc:        loc,
		logger:     logger,
	}
}

// PrinterStatus returns the current printer status information
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Type() != printer.TypeNone,
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printer.Type(),
	}
}

// PrintBill prints a bill's receipt. When printing fails the receipt is
// still returned together with an error wrapping ErrPrintFailed.
func (s *PrinterService) PrintBill(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("load bill: %w", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	receipt := s.newReceipt(bill)
	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.paperWidth)); err != nil {
		s.logger.Warn("receipt not printed", zap.String("bill_number", bill.BillNumber), zap.Error(err))
		return receipt, fmt.Errorf("%w: %v", ErrPrintFailed, err)
	}

	s.logger.Info("receipt printed", zap.String("bill_number", bill.BillNumber), zap.String("printer", s.printer.Type()))
	return receipt, nil
}

func (s *PrinterService) newReceipt(b *entity.Bill) *entity.Receipt {
	r := &entity.Receipt{
		Header:        s.header,
		BillNumber:    b.BillNumber,
		Date:          b.BillDate.In(s.loc).Format("02/01/2006 15:04"),
		PatientMRNo:   b.PatientMRNo,
		DoctorName:    b.DoctorName,
		Department:    b.BillingDepartment,
		ServiceName:   b.ServiceName,
		Quantity:      b.Quantity,
		UnitPrice:     billing.FormatMoney(b.UnitPrice),
		Subtotal:      billing.FormatMoney(b.Subtotal),
		Discount:      billing.FormatMoney(b.DiscountAmount),
		Tax:           billing.FormatMoney(b.TaxAmount),
		Total:         billing.FormatMoney(b.TotalAmount),
		Paid:          billing.FormatMoney(b.PaidAmount),
		Balance:       billing.FormatMoney(b.BalanceDue),
		PaymentStatus: strings.ToUpper(strings.ReplaceAll(b.PaymentStatus.String(), "_", " ")),
		DueDate:       b.DueDate.Format("02/01/2006"),
	}
	if b.PaymentMethod != nil {
		r.PaymentMethod = *b.PaymentMethod
	}
	return r
}

// FormatReceipt converts a Receipt into ESC/POS bytes
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.ClinicName).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	doc.Text("OUTPATIENT BILL")

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Bill No:", r.BillNumber).
		KeyValue("Date:", r.Date).
		KeyValue("MR No:", r.PatientMRNo)
	if r.DoctorName != "" {
		doc.KeyValue("Doctor:", "Dr. "+r.DoctorName)
	}
	if r.Department != "" {
		doc.KeyValue("Dept:", r.Department)
	}

	doc.Separator('-').
		KeyValue(fmt.Sprintf("%dx %s", r.Quantity, r.ServiceName), r.Subtotal)
	if r.Quantity > 1 {
		doc.TextF("  @ %s each", r.UnitPrice)
	}

	doc.Separator('-').
		KeyValue("Subtotal:", r.Subtotal)
	if r.Discount != "0.00" {
		doc.KeyValue("Discount:", "-"+r.Discount)
	}
	if r.Tax != "0.00" {
		doc.KeyValue("Tax:", r.Tax)
	}
	doc.SetBold(true).
		KeyValue("TOTAL (Rs.):", r.Total).
		SetBold(false).
		KeyValue("Paid:", r.Paid).
		KeyValue("Balance:", r.Balance).
		KeyValue("Status:", r.PaymentStatus)
	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", r.PaymentMethod)
	}
	if r.Balance != "0.00" {
		doc.KeyValue("Due by:", r.DueDate)
	}

	doc.Separator('-').
		SetAlign(printer.AlignCenter).
		FeedLines(1).
		Text("Get well soon!").
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
