package userpool

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GroupClaims is the concrete implementation of AuthClaims for tokens issued
// by the external identity provider. The provider encodes role as group
// membership; the first group is treated as the effective role.
type GroupClaims struct {
	jwt.RegisteredClaims
	Username      string   `json:"username,omitempty"`
	CognitoGroups []string `json:"cognito:groups,omitempty"`
	TokenUse      string   `json:"token_use,omitempty"`
	ClientID      string   `json:"client_id,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*GroupClaims)(nil)

// Subject returns the identity the token was issued for. Access tokens carry
// the pool username; the registered subject claim is the fallback.
func (c *GroupClaims) Subject() string {
	if c.Username != "" {
		return c.Username
	}
	return c.RegisteredClaims.Subject
}

// Groups returns the ordered group membership claim.
func (c *GroupClaims) Groups() []string {
	return c.CognitoGroups
}

// EffectiveRole derives the access-control role from the group claims: the
// first group if any, otherwise RoleUser.
func (c *GroupClaims) EffectiveRole() UserRole {
	if len(c.CognitoGroups) > 0 && c.CognitoGroups[0] != "" {
		return UserRole(c.CognitoGroups[0])
	}
	return RoleUser
}

// Expires returns the expiration time
func (c *GroupClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *GroupClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
