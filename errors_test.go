package userpool_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/nvarela/go-userpool"
	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	assert.True(t, userpool.IsAlreadyExists(userpool.ErrAccountExists))
	assert.True(t, userpool.IsCredentialsRejected(userpool.ErrCredentialsRejected))
	assert.True(t, userpool.IsRecordNotFound(userpool.ErrRecordNotFound))
	assert.True(t, userpool.IsForbidden(userpool.ErrInsufficientRole))
	assert.True(t, userpool.IsForbidden(userpool.ErrRoleChangeForbidden))

	assert.False(t, userpool.IsAlreadyExists(errors.New("boom")))
	assert.False(t, userpool.IsCredentialsRejected(nil))
	assert.False(t, userpool.IsProviderFailure(userpool.ErrCredentialsRejected))
}

func TestWrapProviderFailure(t *testing.T) {
	cause := errors.New("connection refused")
	err := userpool.WrapProviderFailure(cause, "sign up failed")

	assert.True(t, userpool.IsProviderFailure(err))
	assert.Equal(t, goerrors.CategoryOperation, err.Category)
	assert.ErrorIs(t, err, cause)
}

func TestWrapPersistenceFailure(t *testing.T) {
	cause := errors.New("database is locked")
	err := userpool.WrapPersistenceFailure(cause, "insert failed")

	assert.Equal(t, goerrors.CategoryInternal, err.Category)
	assert.ErrorIs(t, err, cause)
	assert.False(t, userpool.IsProviderFailure(err))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("request failed: %w", userpool.ErrCredentialsRejected)
	assert.True(t, userpool.IsCredentialsRejected(wrapped))

	wrapped = fmt.Errorf("lookup failed: %w", userpool.ErrRecordNotFound)
	assert.True(t, userpool.IsRecordNotFound(wrapped))
}

func TestCredentialsRejectedIsAuthCategory(t *testing.T) {
	// Wrong credentials surface to users as a 4xx, never a server fault.
	assert.Equal(t, goerrors.CategoryAuth, userpool.ErrCredentialsRejected.Category)
	assert.Equal(t, goerrors.CategoryAuth, userpool.ErrTokenInvalid.Category)
}
