package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/request"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
)

// FormHandler handles medical form requests
type FormHandler struct {
	formService *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

func formInput(r *request.FormRequest, doctorID int64) service.FormInput {
	input := service.FormInput{
		Kind:          r.FormType,
		AppointmentID: r.AppointmentID,
		DoctorID:      doctorID,
	}
	for _, m := range r.Medicines {
		input.Medicines = append(input.Medicines, service.MedicineInput{
			ID:           m.ID,
			Dosage:       m.Dosage,
			Duration:     m.Duration,
			Instructions: m.Instructions,
		})
	}
	for _, t := range r.Tests {
		input.Tests = append(input.Tests, service.TestInput{ID: t.ID, Type: t.Type})
	}
	return input
}

// Preview returns the form as markup for the editor
func (h *FormHandler) Preview(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}

	var req request.FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := formInput(&req, doctorID)
	markup, err := h.formService.Preview(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Form preview rendered", gin.H{"markup": markup})
}

// SaveForm flattens the doctor's annotation onto the form and files it
// @Summary Save form
// @Tags forms
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /forms [post]
func (h *FormHandler) SaveForm(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}

	var req request.SaveFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	form, err := h.formService.Save(c.Request.Context(), &service.SaveFormInput{
		FormInput:  formInput(&req.FormRequest, doctorID),
		Annotation: req.Annotation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Form saved successfully", form)
}

// ListForms lists the doctor's saved forms, filtered by ?type=
func (h *FormHandler) ListForms(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}

	forms, err := h.formService.ListForms(c.Request.Context(), doctorID, c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Forms retrieved successfully", forms)
}

// GetFormImage streams a saved form's PNG
func (h *FormHandler) GetFormImage(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	img, err := h.formService.GetFormImage(c.Request.Context(), id, doctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
