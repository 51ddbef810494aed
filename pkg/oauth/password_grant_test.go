package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexrusso3108/cura-doctors-portal/pkg/circuitbreaker"
)

func newIdP(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Form.Get("password") == "boom":
			w.WriteHeader(http.StatusBadGateway)
		case r.Form.Get("grant_type") == "password" &&
			r.Form.Get("username") == "doctor@cura.in" &&
			r.Form.Get("password") == "right":
			w.Write([]byte(`{"access_token":"abc","token_type":"bearer","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPasswordVerifier(t *testing.T) {
	srv := newIdP(t)
	v := NewPasswordVerifier(Config{TokenURL: srv.URL, ClientID: "portal"}, nil).
		WithHTTPClient(srv.Client())
	ctx := context.Background()

	assert.NoError(t, v.Verify(ctx, "doctor@cura.in", "right"))
	assert.ErrorIs(t, v.Verify(ctx, "doctor@cura.in", "wrong"), ErrInvalidCredentials)

	err := v.Verify(ctx, "doctor@cura.in", "boom")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordVerifierNotConfigured(t *testing.T) {
	v := NewPasswordVerifier(Config{}, nil)
	assert.False(t, v.IsConfigured())
	assert.ErrorIs(t, v.Verify(context.Background(), "a", "b"), ErrNotConfigured)
}

func TestRejectionsDoNotTripBreaker(t *testing.T) {
	srv := newIdP(t)
	cfg := circuitbreaker.DefaultConfig("idp")
	cfg.FailureThreshold = 2
	breaker := circuitbreaker.New(cfg, nil)
	v := NewPasswordVerifier(Config{TokenURL: srv.URL}, breaker).WithHTTPClient(srv.Client())

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, v.Verify(context.Background(), "doctor@cura.in", "wrong"), ErrInvalidCredentials)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())

	for i := 0; i < 2; i++ {
		_ = v.Verify(context.Background(), "doctor@cura.in", "boom")
	}
	assert.ErrorIs(t, v.Verify(context.Background(), "doctor@cura.in", "right"), circuitbreaker.ErrOpen)
}
