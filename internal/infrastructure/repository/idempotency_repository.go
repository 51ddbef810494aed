package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, doctorID int64) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND doctor_id = ?", key, doctorID).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) error {
	err := r.db.WithContext(ctx).Create(ikey).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateKey
	}
	return err
}

func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.db.WithContext(ctx).
		Model(&entity.IdempotencyKey{}).
		Where("key = ? AND doctor_id = ?", ikey.Key, ikey.DoctorID).
		Updates(map[string]interface{}{
			"response_code": ikey.ResponseCode,
			"response_body": ikey.ResponseBody,
			"expires_at":    ikey.ExpiresAt,
		}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, doctorID int64) error {
	return r.db.WithContext(ctx).
		Where("key = ? AND doctor_id = ? AND response_code = 0", key, doctorID).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&entity.IdempotencyKey{}).Error
}
