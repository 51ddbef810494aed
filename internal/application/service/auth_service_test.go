package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/oauth"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

type stubVerifier struct {
	configured bool
	err        error
	calls      []string
}

func (v *stubVerifier) IsConfigured() bool { return v.configured }

func (v *stubVerifier) Verify(_ context.Context, username, _ string) error {
	v.calls = append(v.calls, username)
	return v.err
}

func newAuthFixture(t *testing.T, verifier PasswordVerifier) (*AuthService, *utils.JWTManager) {
	t.Helper()
	hash, err := utils.HashPassword("s3cret")
	require.NoError(t, err)

	doctors := newFakeDoctorRepo(
		entity.Doctor{DoctorID: 1, Name: "Rajesh Kumar", Department: "General Medicine", Password: &hash},
		entity.Doctor{DoctorID: 2, Name: "Anita Rao", Department: "Cardiology", Email: ptr("anita@cura.in")},
		entity.Doctor{DoctorID: 3, Name: "Vikram Shah", Department: "Orthopaedics"},
	)
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(doctors, verifier, jwt, zap.NewNop()), jwt
}

func TestAuthService_Login(t *testing.T) {
	t.Run("local password", func(t *testing.T) {
		svc, jwt := newAuthFixture(t, nil)
		out, err := svc.Login(context.Background(), &LoginInput{DoctorID: 1, Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, "Rajesh Kumar", out.Doctor.Name)
		assert.Equal(t, int64(3600), out.ExpiresIn)

		claims, err := jwt.ValidateAccessToken(out.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.DoctorID)
		assert.Equal(t, "General Medicine", claims.Department)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newAuthFixture(t, nil)
		_, err := svc.Login(context.Background(), &LoginInput{DoctorID: 1, Password: "nope"})
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		svc, _ := newAuthFixture(t, nil)
		_, err := svc.Login(context.Background(), &LoginInput{DoctorID: 99, Password: "s3cret"})
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})

	t.Run("identity provider accepts", func(t *testing.T) {
		v := &stubVerifier{configured: true}
		svc, _ := newAuthFixture(t, v)
		_, err := svc.Login(context.Background(), &LoginInput{DoctorID: 2, Password: "idp-pass"})
		require.NoError(t, err)
		assert.Equal(t, []string{"anita@cura.in"}, v.calls)
	})

	t.Run("identity provider rejects", func(t *testing.T) {
		v := &stubVerifier{configured: true, err: fmt.Errorf("%w: invalid_grant", oauth.ErrInvalidCredentials)}
		svc, _ := newAuthFixture(t, v)
		_, err := svc.Login(context.Background(), &LoginInput{DoctorID: 2, Password: "bad"})
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})

	t.Run("identity provider down", func(t *testing.T) {
		v := &stubVerifier{configured: true, err: errDown}
		svc, _ := newAuthFixture(t, v)
		_, err := svc.Login(context.Background(), &LoginInput{DoctorID: 2, Password: "x"})
		require.Error(t, err)
		assert.Equal(t, 503, apperror.GetAppError(err).Code)
		assert.ErrorIs(t, err, errDown)
	})

	t.Run("no way to authenticate", func(t *testing.T) {
		svc, _ := newAuthFixture(t, &stubVerifier{configured: false})
		_, err := svc.Login(context.Background(), &LoginInput{DoctorID: 2, Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrAuthNotConfigured)

		_, err = svc.Login(context.Background(), &LoginInput{DoctorID: 3, Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrAuthNotConfigured)
	})
}

func TestAuthService_GetProfile(t *testing.T) {
	svc, _ := newAuthFixture(t, nil)

	doctor, err := svc.GetProfile(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Vikram Shah", doctor.Name)

	_, err = svc.GetProfile(context.Background(), 42)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}
