package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(t *testing.T, requests int) (*gin.Engine, *ClientRateLimiter) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rl := NewClientRateLimiter(ctx, RateLimiterConfigFromWindow(requests, time.Minute))
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Doctor") == "7" {
			c.Set(DoctorIDKey, int64(7))
		}
		c.Next()
	})
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, rl
}

func get(r *gin.Engine, remoteAddr, doctor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	if doctor != "" {
		req.Header.Set("X-Doctor", doctor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	r, _ := newLimitedRouter(t, 2)

	for i := 0; i < 2; i++ {
		w := get(r, "10.0.0.1:1234", "")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := get(r, "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRateLimiterKeysClientsSeparately(t *testing.T) {
	r, rl := newLimitedRouter(t, 1)

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.1:1234", "").Code)

	// another address and a signed-in doctor each get their own bucket
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2:1234", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1234", "7").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.3:1234", "7").Code)

	assert.Equal(t, 3, rl.Stats()["active_clients"])
}

func TestRateLimiterCleanup(t *testing.T) {
	_, rl := newLimitedRouter(t, 5)
	now := time.Date(2026, 10, 16, 10, 30, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("ip:10.0.0.1")
	now = now.Add(5 * time.Minute)
	rl.getLimiter("ip:10.0.0.2")

	now = now.Add(6 * time.Minute)
	rl.cleanup()

	stats := rl.Stats()
	assert.Equal(t, 1, stats["active_clients"])
}

func TestRateLimiterConfigFromWindow(t *testing.T) {
	cfg := RateLimiterConfigFromWindow(120, time.Minute)
	assert.InDelta(t, 2.0, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 120, cfg.BurstSize)

	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFromWindow(0, time.Minute))
}
