package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
)

// DashboardHandler serves the landing page and the bill form lookups
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns today's appointments for the signed-in doctor
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), doctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard retrieved successfully", dashboard)
}

// ListDoctors returns every doctor
func (h *DashboardHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.dashboardService.ListDoctors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Doctors retrieved successfully", doctors)
}

// ListAppointments returns one patient's appointments with ?patient=MRNO,
// or the latest appointments
func (h *DashboardHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.dashboardService.ListAppointments(c.Request.Context(), c.Query("patient"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Appointments retrieved successfully", appointments)
}
