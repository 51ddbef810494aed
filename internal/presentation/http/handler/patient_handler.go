package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
)

// PatientHandler serves the patient directory
type PatientHandler struct {
	patientService *service.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// ListPatients lists patients, filtered by ?search=
func (h *PatientHandler) ListPatients(c *gin.Context) {
	patients, err := h.patientService.ListPatients(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patients retrieved successfully", patients)
}

// GetPatient returns a patient with their appointments and bills
func (h *PatientHandler) GetPatient(c *gin.Context) {
	profile, err := h.patientService.GetPatientProfile(c.Request.Context(), c.Param("mrno"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient retrieved successfully", profile)
}
