package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyReservationTTL is how long an unfinished request holds its key
	IdempotencyReservationTTL = 5 * time.Minute

	maxIdempotencyKeyLength = 255
	inProgressMessage       = "A request with this Idempotency-Key is still in progress"
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyRequired requires an Idempotency-Key on POST requests. The key
// is reserved before the handler runs, so a second submission arriving while
// the first is still in flight is refused with 409 instead of running twice.
// A key already used by the same doctor replays the stored response; reusing
// it for a different body is a conflict. Only successful responses are
// stored, so a failed submission can be retried with the same key.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" || len(idempotencyKey) > maxIdempotencyKeyLength {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}

		doctorID := GetDoctorID(c)
		if doctorID == 0 {
			response.Unauthorized(c, "Doctor not authenticated")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])
		endpoint := c.Request.Method + " " + c.FullPath()

		ctx := c.Request.Context()
		existing, err := config.Repo.GetByKey(ctx, idempotencyKey, doctorID)
		if err != nil {
			log.Error("idempotency lookup failed", zap.Error(err))
			response.ErrorWithCode(c, http.StatusInternalServerError, "Failed to check idempotency key")
			c.Abort()
			return
		}

		if existing != nil && !existing.IsExpired(now()) {
			respondExisting(c, existing, requestHash, endpoint)
			return
		}

		if existing != nil {
			// expired; clear it so this request can take the key
			if err := config.Repo.DeleteExpired(ctx, now()); err != nil {
				log.Warn("expired idempotency keys not removed", zap.Error(err))
			}
		}

		ikey := &entity.IdempotencyKey{
			Key:         idempotencyKey,
			DoctorID:    doctorID,
			Endpoint:    endpoint,
			RequestHash: requestHash,
			ExpiresAt:   now().Add(IdempotencyReservationTTL),
		}
		if err := config.Repo.Reserve(ctx, ikey); err != nil {
			if !errors.Is(err, repository.ErrDuplicateKey) {
				log.Error("idempotency reservation failed", zap.Error(err))
				response.ErrorWithCode(c, http.StatusInternalServerError, "Failed to check idempotency key")
				c.Abort()
				return
			}
			// another request took the key after the lookup
			existing, err = config.Repo.GetByKey(ctx, idempotencyKey, doctorID)
			if err != nil || existing == nil {
				response.ErrorWithCode(c, http.StatusConflict, inProgressMessage)
				c.Abort()
				return
			}
			respondExisting(c, existing, requestHash, endpoint)
			return
		}

		// The outcome is recorded even if the client has gone away.
		storeCtx := context.WithoutCancel(ctx)
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := config.Repo.Release(storeCtx, idempotencyKey, doctorID); err != nil {
				log.Warn("idempotency key not released", zap.String("key", idempotencyKey), zap.Error(err))
			}
		}()

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		ikey.ResponseCode = status
		ikey.ResponseBody = blw.body.String()
		ikey.ExpiresAt = now().Add(IdempotencyKeyTTL)
		if err := config.Repo.Complete(storeCtx, ikey); err != nil {
			log.Warn("idempotency key not stored", zap.String("key", idempotencyKey), zap.Error(err))
			return
		}
		completed = true
	}
}

// respondExisting answers a request whose key is already held: a conflict
// when the key belongs to another request or is still in flight, otherwise
// the stored response.
func respondExisting(c *gin.Context, existing *entity.IdempotencyKey, requestHash, endpoint string) {
	defer c.Abort()
	if existing.RequestHash != requestHash || existing.Endpoint != endpoint {
		response.ErrorWithCode(c, http.StatusConflict, "Idempotency-Key was already used for a different request")
		return
	}
	if existing.IsPending() {
		response.ErrorWithCode(c, http.StatusConflict, inProgressMessage)
		return
	}
	c.Header("X-Idempotency-Replayed", "true")
	c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
}
