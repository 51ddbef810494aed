package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/request"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles doctor login
// @Summary Login
// @Description Authenticate a doctor by doctor id and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	doctorID, _, err := req.DoctorID.Int64()
	if err != nil || doctorID <= 0 {
		response.ValidationError(c, []apperror.FieldError{{Field: "doctor_id", Message: "Doctor ID must be a number"}})
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		DoctorID: doctorID,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", gin.H{
		"doctor":       output.Doctor,
		"access_token": output.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   output.ExpiresIn,
	})
}

// GetProfile returns the signed-in doctor
// @Summary Profile
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}

	doctor, err := h.authService.GetProfile(c.Request.Context(), doctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", doctor)
}
