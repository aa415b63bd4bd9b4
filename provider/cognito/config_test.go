package cognito

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigIssuerURL(t *testing.T) {
	cfg := DefaultConfig("us-east-1", "us-east-1_TestPool", "client-id")
	assert.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_TestPool", cfg.issuerURL())

	cfg.Issuer = "https://localhost:9229/us-east-1_TestPool/"
	assert.Equal(t, "https://localhost:9229/us-east-1_TestPool", cfg.issuerURL())
}

func TestConfigJWKSURL(t *testing.T) {
	cfg := DefaultConfig("us-east-1", "us-east-1_TestPool", "client-id")
	assert.Equal(t,
		"https://cognito-idp.us-east-1.amazonaws.com/us-east-1_TestPool/.well-known/jwks.json",
		cfg.jwksURL())

	cfg.JWKSURL = "https://localhost:9229/keys.json"
	assert.Equal(t, "https://localhost:9229/keys.json", cfg.jwksURL())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig("us-east-1", "pool", "client").validate())

	assert.Error(t, DefaultConfig("us-east-1", "", "client").validate())
	assert.Error(t, DefaultConfig("us-east-1", "pool", "").validate())
	assert.Error(t, DefaultConfig("", "pool", "client").validate())

	local := DefaultConfig("", "pool", "client")
	local.Endpoint = "http://localhost:9229"
	assert.NoError(t, local.validate())
}

func TestDefaultConfigDefaults(t *testing.T) {
	cfg := DefaultConfig("us-east-1", "pool", "client")
	assert.Equal(t, time.Hour, cfg.KeyRefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.KeyRefreshTimeout)
}
