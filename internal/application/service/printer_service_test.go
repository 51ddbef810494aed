package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/enum"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/printer"
)

type capturePrinter struct {
	printed [][]byte
	err     error
}

func (p *capturePrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.printed = append(p.printed, data)
	return nil
}

func (p *capturePrinter) IsConnected(context.Context) bool { return p.err == nil }
func (p *capturePrinter) Type() string                     { return printer.TypeNetwork }

func testBill() entity.Bill {
	return entity.Bill{
		ID:                uuid.New(),
		BillNumber:        "OPB-2026-10-16-00042",
		PatientMRNo:       "MR-1001",
		ServiceName:       "Consultation",
		BillingDepartment: "OPD",
		DoctorName:        "Anita Rao",
		UnitPrice:         100,
		Quantity:          2,
		Subtotal:          200,
		DiscountAmount:    20,
		TaxAmount:         9,
		TotalAmount:       189,
		PaidAmount:        89,
		BalanceDue:        100,
		PaymentStatus:     enum.PaymentStatusPartiallyPaid,
		PaymentMethod:     ptr("cash"),
		BillDate:          time.Date(2026, 10, 16, 5, 0, 0, 0, time.UTC),
		DueDate:           day("2026-10-23"),
	}
}

func newPrinterFixture(t *testing.T, p printer.Printer, bills ...entity.Bill) *PrinterService {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	header := entity.ReceiptHeader{ClinicName: "Cura Hospitals", Address: "Bengaluru"}
	return NewPrinterService(p, newFakeBillRepo(bills...), header, printer.Width58mm, loc, zap.NewNop())
}

func TestPrinterService_PrintBill(t *testing.T) {
	bill := testBill()
	p := &capturePrinter{}
	svc := newPrinterFixture(t, p, bill)

	receipt, err := svc.PrintBill(context.Background(), bill.ID)
	require.NoError(t, err)

	assert.Equal(t, "16/10/2026 10:30", receipt.Date)
	assert.Equal(t, "189.00", receipt.Total)
	assert.Equal(t, "100.00", receipt.Balance)
	assert.Equal(t, "PARTIALLY PAID", receipt.PaymentStatus)
	assert.Equal(t, "cash", receipt.PaymentMethod)

	require.Len(t, p.printed, 1)
	out := string(p.printed[0])
	assert.Contains(t, out, "Cura Hospitals")
	assert.Contains(t, out, "OUTPATIENT BILL")
	assert.Contains(t, out, "OPB-2026-10-16-00042")
	assert.Contains(t, out, "TOTAL (Rs.):")
	assert.Contains(t, out, "@ 100.00 each")
	assert.Contains(t, out, "23/10/2026")
}

func TestPrinterService_PrintBillWithoutPrinter(t *testing.T) {
	bill := testBill()
	svc := newPrinterFixture(t, printer.NewNullPrinter(), bill)

	receipt, err := svc.PrintBill(context.Background(), bill.ID)
	require.ErrorIs(t, err, ErrPrintFailed)
	assert.True(t, errors.Is(err, ErrPrintFailed))
	require.NotNil(t, receipt)
	assert.Equal(t, bill.BillNumber, receipt.BillNumber)

	status := svc.GetStatus(context.Background())
	assert.False(t, status.Configured)
	assert.Equal(t, printer.TypeNone, status.Type)
}

func TestPrinterService_PrintBillNotFound(t *testing.T) {
	p := &capturePrinter{}
	svc := newPrinterFixture(t, p)

	_, err := svc.PrintBill(context.Background(), uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	assert.Empty(t, p.printed)
}

func TestFormatReceipt_PaidBillOmitsDueDate(t *testing.T) {
	r := &entity.Receipt{
		Header:        entity.ReceiptHeader{ClinicName: "Cura Hospitals"},
		BillNumber:    "OPB-2026-10-16-00001",
		Quantity:      1,
		ServiceName:   "ECG",
		UnitPrice:     "300.00",
		Subtotal:      "300.00",
		Discount:      "0.00",
		Tax:           "0.00",
		Total:         "300.00",
		Paid:          "300.00",
		Balance:       "0.00",
		PaymentStatus: "PAID",
		DueDate:       "23/10/2026",
	}
	out := string(FormatReceipt(r, printer.Width80mm))
	assert.NotContains(t, out, "Due by:")
	assert.NotContains(t, out, "Discount:")
	assert.NotContains(t, out, "each")
	assert.Contains(t, out, "1x ECG")
}
