package request

// LoginRequest represents a login request. Doctors sign in with their
// numeric doctor id.
type LoginRequest struct {
	DoctorID FlexString `json:"doctor_id" binding:"required"`
	Password string     `json:"password" binding:"required"`
}
