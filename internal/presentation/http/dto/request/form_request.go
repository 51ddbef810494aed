package request

// MedicineRequest is a catalog medicine with the doctor's directions
type MedicineRequest struct {
	ID           int64  `json:"id" binding:"required"`
	Dosage       string `json:"dosage" binding:"max=120"`
	Duration     string `json:"duration" binding:"max=120"`
	Instructions string `json:"instructions"`
}

// TestRequest is a catalog lab test or radiology service
type TestRequest struct {
	ID   int64  `json:"id" binding:"required"`
	Type string `json:"type" binding:"omitempty,oneof=lab radiology"`
}

// FormRequest describes the form being filled in
type FormRequest struct {
	FormType      string            `json:"form_type" binding:"required"`
	AppointmentID string            `json:"appointment_id"`
	Medicines     []MedicineRequest `json:"medicines" binding:"dive"`
	Tests         []TestRequest     `json:"tests" binding:"dive"`
}

// SaveFormRequest adds the annotation layer, a PNG data URL the size of the page
type SaveFormRequest struct {
	FormRequest
	Annotation string `json:"annotation" binding:"required"`
}
