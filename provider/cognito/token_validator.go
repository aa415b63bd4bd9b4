package cognito

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nvarela/go-userpool"
)

// TokenValidator validates Cognito-issued access tokens against the pool's
// JWKS endpoint. Any failure to verify, including a timed-out key fetch, is
// reported as an authentication failure.
type TokenValidator struct {
	config  Config
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	logger  userpool.Logger
}

var _ userpool.TokenValidator = (*TokenValidator)(nil)

// NewTokenValidator creates a validator that refreshes signing keys in the
// background until ctx is cancelled. Pass cfg.KeyFunc to skip JWKS fetching.
func NewTokenValidator(ctx context.Context, cfg Config) (*TokenValidator, error) {
	issuer := cfg.issuerURL()
	if issuer == "" {
		return nil, fmt.Errorf("cognito: issuer or region and user pool ID are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = userpool.DefaultLogger
	}

	v := &TokenValidator{
		config:  cfg,
		keyFunc: cfg.KeyFunc,
		logger:  logger,
	}

	if v.keyFunc == nil {
		refreshInterval := cfg.KeyRefreshInterval
		if refreshInterval == 0 {
			refreshInterval = time.Hour
		}
		refreshTimeout := cfg.KeyRefreshTimeout
		if refreshTimeout == 0 {
			refreshTimeout = 10 * time.Second
		}

		jwks, err := keyfunc.Get(cfg.jwksURL(), keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   refreshInterval,
			RefreshTimeout:    refreshTimeout,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("cognito JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("cognito: failed to fetch JWKS: %w", err)
		}

		v.jwks = jwks
		v.keyFunc = jwks.Keyfunc
	}

	return v, nil
}

// Validate implements userpool.TokenValidator.
func (v *TokenValidator) Validate(tokenString string) (userpool.AuthClaims, error) {
	claims := &userpool.GroupClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.config.issuerURL()),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, normalizeValidationError(err)
	}
	if !token.Valid {
		return nil, rejectToken(nil, "token failed validation")
	}

	// Cognito puts the app client in client_id rather than aud on access
	// tokens, so jwt.WithAudience cannot enforce it.
	if v.config.ClientID != "" && claims.ClientID != "" && claims.ClientID != v.config.ClientID {
		return nil, rejectToken(nil, "token issued for a different client")
	}

	return claims, nil
}

// Close stops the background JWKS refresh, if one is running.
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func normalizeValidationError(err error) error {
	cause := "token failed validation"
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		cause = "token expired"
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		cause = "token malformed"
	case stderrors.Is(err, jwt.ErrTokenInvalidIssuer):
		cause = "token issued by a different pool"
	}
	return rejectToken(err, cause)
}

func rejectToken(cause error, reason string) error {
	clone := userpool.ErrTokenInvalid.Clone()
	clone.Source = cause
	return clone.WithMetadata(map[string]any{
		"provider": "cognito",
		"reason":   reason,
	})
}
