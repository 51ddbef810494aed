package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/request"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/pagination"
)

const dueDateLayout = "2006-01-02"

// BillHandler handles outpatient billing requests
type BillHandler struct {
	billingService *service.BillingService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billingService *service.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

func amountsInput(r request.AmountsRequest) service.AmountsInput {
	return service.AmountsInput{
		UnitPrice:       r.UnitPrice.String(),
		Quantity:        r.Quantity.String(),
		DiscountPercent: r.DiscountPercent.String(),
		TaxPercent:      r.TaxPercent.String(),
	}
}

// PreviewAmounts recomputes subtotal, discount, tax and total for the form
// @Summary Preview bill amounts
// @Tags bills
// @Security BearerAuth
// @Router /bills/preview [post]
func (h *BillHandler) PreviewAmounts(c *gin.Context) {
	var req request.AmountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	response.OK(c, "Amounts calculated", h.billingService.PreviewAmounts(amountsInput(req)))
}

// CreateBill handles the bill form submission
// @Summary Create bill
// @Tags bills
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}

	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.CreateBillInput{
		AmountsInput:       amountsInput(req.AmountsRequest),
		PatientMRNo:        req.PatientMRNo,
		AppointmentID:      req.AppointmentID,
		ServiceCategory:    req.ServiceCategory,
		ServiceName:        req.ServiceName,
		ServiceDescription: req.ServiceDescription,
		BillingDepartment:  req.BillingDepartment,
		PaymentMethod:      req.PaymentMethod,
		Notes:              req.Notes,
		SubmittedBy:        doctorID,
	}

	var fieldErrors []apperror.FieldError
	if id, present, err := req.DoctorID.Int64(); err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "doctor_id", Message: "Doctor ID must be a number"})
	} else if present {
		input.DoctorID = &id
	}
	if req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "due_date", Message: "Due date must be YYYY-MM-DD"})
		} else {
			input.DueDate = &due
		}
	}
	if len(fieldErrors) > 0 {
		response.ValidationError(c, fieldErrors)
		return
	}

	bill, err := h.billingService.CreateBill(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", bill)
}

// ListBills lists bills with ?status=&search=&page=&per_page=
func (h *BillHandler) ListBills(c *gin.Context) {
	var query request.ListBillsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.billingService.ListBills(c.Request.Context(), &service.ListBillsInput{
		Status:     query.Status,
		Search:     query.Search,
		Pagination: &pagination.PaginationParams{Page: query.Page, PerPage: query.PerPage},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved successfully", result)
}

// GetStats returns the billing summary cards
func (h *BillHandler) GetStats(c *gin.Context) {
	stats, err := h.billingService.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill stats retrieved successfully", stats)
}

// GetBill returns one bill
func (h *BillHandler) GetBill(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// RecordPayment records a payment against a bill
func (h *BillHandler) RecordPayment(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	amount, err := req.Amount.Float64()
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "amount", Message: "Amount must be a number"}})
		return
	}

	bill, err := h.billingService.RecordPayment(c.Request.Context(), id, &service.RecordPaymentInput{
		Amount:      amount,
		Method:      req.PaymentMethod,
		SubmittedBy: doctorID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", bill)
}

// CancelBill voids an unpaid bill
func (h *BillHandler) CancelBill(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req request.CancelBillRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	bill, err := h.billingService.CancelBill(c.Request.Context(), id, req.Reason, doctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill cancelled successfully", bill)
}
