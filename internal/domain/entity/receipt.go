package entity

// ReceiptHeader holds the clinic header printed at the top of a receipt
type ReceiptHeader struct {
	ClinicName string `json:"clinic_name"`
	Address    string `json:"address,omitempty"`
}

// Receipt is the printable form of a bill. It is composed at print time and
// never stored.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	BillNumber    string        `json:"bill_number"`
	Date          string        `json:"date"`
	PatientMRNo   string        `json:"patient_mrno"`
	DoctorName    string        `json:"doctor_name,omitempty"`
	Department    string        `json:"department,omitempty"`
	ServiceName   string        `json:"service_name"`
	Quantity      int           `json:"quantity"`
	UnitPrice     string        `json:"unit_price"`
	Subtotal      string        `json:"subtotal"`
	Discount      string        `json:"discount"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	Paid          string        `json:"paid"`
	Balance       string        `json:"balance"`
	PaymentStatus string        `json:"payment_status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	DueDate       string        `json:"due_date"`
}
