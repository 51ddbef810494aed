package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/middleware"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

// GetDoctorID extracts the signed-in doctor's id from the Gin context.
// It writes a 401 and returns false when there is none.
func GetDoctorID(c *gin.Context) (int64, bool) {
	doctorID := middleware.GetDoctorID(c)
	if doctorID == 0 {
		response.Unauthorized(c, "Doctor not authenticated")
		return 0, false
	}
	return doctorID, true
}

// pathUUID parses the :id path parameter, writing a 400 when it is malformed
func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
