package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores the response to a submitted bill or form so a
// repeated submission replays it instead of creating a duplicate
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_doctor_key;size:255;not null"`
	DoctorID     int64     `gorm:"uniqueIndex:idx_idempotency_doctor_key;not null"`
	Endpoint     string    `gorm:"size:255;not null"` // e.g. "POST /api/v1/bills"
	RequestHash  string    `gorm:"size:64"`           // SHA256 of the request body
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the key has expired at now
func (i *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsPending reports whether the request holding the key has not finished
func (i *IdempotencyKey) IsPending() bool {
	return i.ResponseCode == 0
}
