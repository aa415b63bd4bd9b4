package cognito

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nvarela/go-userpool"
)

// Config holds Cognito user pool configuration.
type Config struct {
	// Region is the AWS region hosting the user pool (e.g. "us-east-1").
	Region string

	// UserPoolID identifies the pool (e.g. "us-east-1_Ab129faBb").
	UserPoolID string

	// ClientID is the app client used for sign-up and authentication.
	ClientID string

	// Endpoint overrides the service endpoint (optional, for local
	// emulators such as cognito-local).
	Endpoint string

	// Issuer overrides the default issuer URL (optional).
	// Default: "https://cognito-idp.{Region}.amazonaws.com/{UserPoolID}".
	Issuer string

	// JWKSURL overrides the JWKS endpoint (optional).
	// Default: "{Issuer}/.well-known/jwks.json".
	JWKSURL string

	// KeyRefreshInterval is how often signing keys are refreshed.
	// Default: 1 hour.
	KeyRefreshInterval time.Duration

	// KeyRefreshTimeout bounds a single remote key fetch.
	// Default: 10 seconds.
	KeyRefreshTimeout time.Duration

	// KeyFunc overrides JWKS key resolution (optional, for tests or
	// pre-fetched keys). When set, no background JWKS refresh runs.
	KeyFunc jwt.Keyfunc

	// API overrides the Cognito client (optional, for tests or custom
	// AWS configuration).
	API API

	// Logger receives adapter diagnostics. Defaults to the package logger.
	Logger userpool.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(region, userPoolID, clientID string) Config {
	return Config{
		Region:             region,
		UserPoolID:         userPoolID,
		ClientID:           clientID,
		KeyRefreshInterval: time.Hour,
		KeyRefreshTimeout:  10 * time.Second,
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.UserPoolID) == "" {
		return fmt.Errorf("cognito: user pool ID is required")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("cognito: client ID is required")
	}
	if strings.TrimSpace(c.Region) == "" && c.Issuer == "" && c.Endpoint == "" {
		return fmt.Errorf("cognito: region is required")
	}
	return nil
}

func (c Config) issuerURL() string {
	if c.Issuer != "" {
		return strings.TrimSuffix(strings.TrimSpace(c.Issuer), "/")
	}
	if c.Region == "" || c.UserPoolID == "" {
		return ""
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	issuer := c.issuerURL()
	if issuer == "" {
		return ""
	}
	return issuer + "/.well-known/jwks.json"
}
