package repository

import (
	"context"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves a key submitted by a doctor
	GetByKey(ctx context.Context, key string, doctorID int64) (*entity.IdempotencyKey, error)
	// Reserve inserts a pending key. ErrDuplicateKey means the doctor
	// already holds the key.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Complete stores the response of a reserved key
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release removes a pending key so the request can be sent again
	Release(ctx context.Context, key string, doctorID int64) error
	// DeleteExpired removes keys that expired before now
	DeleteExpired(ctx context.Context, now time.Time) error
}
