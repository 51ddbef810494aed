// Package oauth checks doctor credentials against an external identity
// provider with the OAuth2 resource-owner password grant.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Alexrusso3108/cura-doctors-portal/pkg/circuitbreaker"
)

var (
	ErrInvalidCredentials = errors.New("identity provider rejected the credentials")
	ErrNotConfigured      = errors.New("identity provider is not configured")
)

// Config holds the identity provider settings
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// PasswordVerifier verifies a username and password with the provider
type PasswordVerifier struct {
	config  *oauth2.Config
	breaker *circuitbreaker.CircuitBreaker
	client  *http.Client
}

// NewPasswordVerifier creates a verifier. breaker may be nil.
func NewPasswordVerifier(cfg Config, breaker *circuitbreaker.CircuitBreaker) *PasswordVerifier {
	return &PasswordVerifier{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		breaker: breaker,
	}
}

// WithHTTPClient sets the client used for token requests
func (v *PasswordVerifier) WithHTTPClient(c *http.Client) *PasswordVerifier {
	v.client = c
	return v
}

// IsConfigured checks if a token endpoint is set
func (v *PasswordVerifier) IsConfigured() bool {
	return v != nil && v.config.Endpoint.TokenURL != ""
}

// Verify exchanges username and password for a token. A rejection by the
// provider is ErrInvalidCredentials; transport failures are returned as is.
func (v *PasswordVerifier) Verify(ctx context.Context, username, password string) error {
	if !v.IsConfigured() {
		return ErrNotConfigured
	}
	if v.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.client)
	}

	var rejected error
	call := func(ctx context.Context) error {
		_, err := v.config.PasswordCredentialsToken(ctx, username, password)
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
			// a rejection is an answer, not a provider failure
			rejected = err
			return nil
		}
		return err
	}

	var err error
	if v.breaker != nil {
		err = v.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return fmt.Errorf("password grant: %w", err)
	}
	if rejected != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, rejected)
	}
	return nil
}
