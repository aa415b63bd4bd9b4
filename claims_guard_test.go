package userpool_test

import (
	"testing"

	"github.com/nvarela/go-userpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsGuardAuthorize(t *testing.T) {
	guard := userpool.ClaimsGuard{}

	assert.NoError(t, guard.Authorize(adminClaims("admin@example.com"), userpool.RoleAdmin))
	assert.NoError(t, guard.Authorize(userClaims("pepe@example.com"), userpool.RoleAdmin, userpool.RoleUser))

	err := guard.Authorize(userClaims("pepe@example.com"), userpool.RoleAdmin)
	require.Error(t, err)
	assert.True(t, userpool.IsForbidden(err))
}

func TestClaimsGuardAuthorizeNilClaims(t *testing.T) {
	guard := userpool.ClaimsGuard{}

	err := guard.Authorize(nil, userpool.RoleUser)
	require.Error(t, err)
	assert.False(t, userpool.IsForbidden(err))
}

func TestClaimsGuardAuthorizeEdit(t *testing.T) {
	guard := userpool.ClaimsGuard{}

	tests := []struct {
		name        string
		claims      *userpool.GroupClaims
		target      string
		changesRole bool
		wantErr     bool
	}{
		{"admin edits anyone", adminClaims("admin@example.com"), "pepe@example.com", false, false},
		{"admin changes any role", adminClaims("admin@example.com"), "pepe@example.com", true, false},
		{"admin changes own role", adminClaims("admin@example.com"), "admin@example.com", true, false},
		{"user edits self", userClaims("pepe@example.com"), "pepe@example.com", false, false},
		{"user edits other", userClaims("pepe@example.com"), "mari@example.com", false, true},
		{"user changes own role", userClaims("pepe@example.com"), "pepe@example.com", true, true},
		{"user changes other role", userClaims("pepe@example.com"), "mari@example.com", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.AuthorizeEdit(tt.claims, tt.target, tt.changesRole)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, userpool.IsForbidden(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
