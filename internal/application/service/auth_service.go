package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/oauth"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

// PasswordVerifier checks credentials against an external identity provider
type PasswordVerifier interface {
	IsConfigured() bool
	Verify(ctx context.Context, username, password string) error
}

// AuthService handles doctor sign-in
type AuthService struct {
	doctorRepo repository.DoctorRepository
	verifier   PasswordVerifier
	jwtManager *utils.JWTManager
	logger     *zap.Logger
}

// NewAuthService creates a new auth service. verifier may be nil.
func NewAuthService(
	doctorRepo repository.DoctorRepository,
	verifier PasswordVerifier,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		doctorRepo: doctorRepo,
		verifier:   verifier,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	DoctorID int64
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	Doctor      *entity.Doctor
	AccessToken string
	ExpiresIn   int64
}

// Login authenticates a doctor by numeric id and password.
// A stored bcrypt hash is checked first. Doctors without one are checked
// against the identity provider by email when it is configured.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, input.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := s.checkPassword(ctx, doctor, input.Password); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateAccessToken(doctor.DoctorID, doctor.Name, doctor.Department)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("doctor signed in", zap.Int64("doctor_id", doctor.DoctorID))

	return &LoginOutput{
		Doctor:      doctor,
		AccessToken: token,
		ExpiresIn:   int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

func (s *AuthService) checkPassword(ctx context.Context, doctor *entity.Doctor, password string) error {
	switch {
	case doctor.HasPassword():
		if !utils.CheckPassword(*doctor.Password, password) {
			return apperror.ErrInvalidCredentials
		}
		return nil

	case doctor.EmailAddress() != "" && s.verifier != nil && s.verifier.IsConfigured():
		err := s.verifier.Verify(ctx, doctor.EmailAddress(), password)
		if errors.Is(err, oauth.ErrInvalidCredentials) {
			return apperror.ErrInvalidCredentials
		}
		if err != nil {
			s.logger.Error("identity provider unavailable",
				zap.Int64("doctor_id", doctor.DoctorID), zap.Error(err))
			return apperror.Wrap(apperror.ErrServiceUnavailable.Code, apperror.ErrServiceUnavailable.Message, err)
		}
		return nil

	default:
		return apperror.ErrAuthNotConfigured
	}
}

// GetProfile returns the signed-in doctor
func (s *AuthService) GetProfile(ctx context.Context, doctorID int64) (*entity.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor == nil {
		return nil, apperror.NewNotFoundError("Doctor")
	}
	return doctor, nil
}
