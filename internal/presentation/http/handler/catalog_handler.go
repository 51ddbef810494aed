package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
)

// CatalogHandler serves medicine and test lookups for the form editor
type CatalogHandler struct {
	formService *service.FormService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(formService *service.FormService) *CatalogHandler {
	return &CatalogHandler{formService: formService}
}

// SearchMedicines searches medicines by ?search=
func (h *CatalogHandler) SearchMedicines(c *gin.Context) {
	medicines, err := h.formService.SearchMedicines(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Medicines retrieved successfully", medicines)
}

// SearchTests searches lab tests and radiology services by ?search=
func (h *CatalogHandler) SearchTests(c *gin.Context) {
	tests, err := h.formService.SearchTests(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tests retrieved successfully", tests)
}
