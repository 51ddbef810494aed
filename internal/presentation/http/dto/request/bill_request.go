package request

// AmountsRequest is the service line as typed into the bill form. Values
// that do not parse are treated as zero, quantity as one.
type AmountsRequest struct {
	UnitPrice       FlexString `json:"unit_price"`
	Quantity        FlexString `json:"quantity"`
	DiscountPercent FlexString `json:"discount_percent"`
	TaxPercent      FlexString `json:"tax_percent"`
}

// CreateBillRequest represents the bill form
type CreateBillRequest struct {
	AmountsRequest
	PatientMRNo        string     `json:"patient_mrno"`
	AppointmentID      string     `json:"appointment_id"`
	ServiceCategory    string     `json:"service_category" binding:"max=64"`
	ServiceName        string     `json:"service_name" binding:"max=255"`
	ServiceDescription string     `json:"service_description"`
	BillingDepartment  string     `json:"billing_department" binding:"max=64"`
	DoctorID           FlexString `json:"doctor_id"`
	PaymentMethod      string     `json:"payment_method" binding:"max=32"`
	DueDate            string     `json:"due_date"` // YYYY-MM-DD
	Notes              string     `json:"notes"`
}

// RecordPaymentRequest is a payment taken against a bill
type RecordPaymentRequest struct {
	Amount        FlexString `json:"amount" binding:"required"`
	PaymentMethod string     `json:"payment_method" binding:"max=32"`
}

// CancelBillRequest carries an optional cancellation reason
type CancelBillRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ListBillsQuery holds the bill list filters
type ListBillsQuery struct {
	Status  string `form:"status"`
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
