package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "cura-doctors-portal"

// JWTClaims represents the claims in a doctor's access token
type JWTClaims struct {
	DoctorID   int64  `json:"doctor_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey         []byte
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:         []byte(secret),
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// AccessTokenExpiry returns the lifetime of issued tokens
func (m *JWTManager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

// GenerateAccessToken generates a new access token
func (m *JWTManager) GenerateAccessToken(doctorID int64, name, department string) (string, error) {
	now := m.now()
	claims := &JWTClaims{
		DoctorID:   doctorID,
		Name:       name,
		Department: department,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(doctorID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateAccessToken validates an access token and returns the claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.DoctorID <= 0 {
		return nil, errors.New("invalid doctor ID in token")
	}

	return claims, nil
}
