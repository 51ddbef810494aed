package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

// Context keys set by AuthMiddleware
const (
	DoctorIDKey         = "doctor_id"
	DoctorNameKey       = "doctor_name"
	DoctorDepartmentKey = "doctor_department"
)

// AuthMiddleware creates a JWT authentication middleware. Browsers cannot
// set headers on a websocket handshake, so upgrade requests may pass the
// token in the access_token query parameter instead.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(DoctorIDKey, claims.DoctorID)
		c.Set(DoctorNameKey, claims.Name)
		c.Set(DoctorDepartmentKey, claims.Department)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return parts[1], true
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		if token := c.Query("access_token"); token != "" {
			return token, true
		}
	}
	return "", false
}

// GetDoctorID returns the signed-in doctor's id, or 0 before authentication
func GetDoctorID(c *gin.Context) int64 {
	v, exists := c.Get(DoctorIDKey)
	if !exists {
		return 0
	}
	id, _ := v.(int64)
	return id
}
