package userpool

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to rich errors so callers can branch without string
// matching on messages.
const (
	TextCodeValidation          = "VALIDATION"
	TextCodeAlreadyExists       = "ALREADY_EXISTS"
	TextCodeCredentialsRejected = "CREDENTIALS_REJECTED"
	TextCodeUnauthorized        = "UNAUTHORIZED"
	TextCodeForbidden           = "FORBIDDEN"
	TextCodeNotFound            = "NOT_FOUND"
	TextCodeProviderError       = "PROVIDER_ERROR"
	TextCodePersistenceError    = "PERSISTENCE_ERROR"
)

// ErrAccountExists is returned when a registration targets an email that
// already has a non-deleted record.
var ErrAccountExists = goerrors.New("user already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyExists)

// ErrCredentialsRejected is the structured "username or password incorrect"
// outcome. It is a user-facing authentication failure, never a server fault.
var ErrCredentialsRejected = goerrors.New("username or password incorrect", goerrors.CategoryAuth).
	WithTextCode(TextCodeCredentialsRejected)

// ErrTokenInvalid covers missing, malformed, expired, or otherwise
// unverifiable bearer tokens, including verification timeouts.
var ErrTokenInvalid = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized)

// ErrInsufficientRole is returned when a valid token lacks the role an
// operation requires, or a non-admin targets another user's account.
var ErrInsufficientRole = goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden)

// ErrRoleChangeForbidden is returned when a non-admin tries to change a
// role, including on their own account.
var ErrRoleChangeForbidden = goerrors.New("only admins can update role", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden)

// ErrRecordNotFound is returned when the target user record is absent.
var ErrRecordNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNotFound)

// WrapProviderFailure marks err as an upstream identity-provider failure.
// Provider calls are not retried: the multi-step sequences behind them are
// not idempotent-safe to retry blindly.
func WrapProviderFailure(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode(TextCodeProviderError)
}

// WrapPersistenceFailure marks err as a local store failure.
func WrapPersistenceFailure(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodePersistenceError)
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

// IsAlreadyExists reports whether err is a duplicate-registration outcome.
func IsAlreadyExists(err error) bool {
	return hasTextCode(err, TextCodeAlreadyExists)
}

// IsCredentialsRejected reports whether err is the rejected-credentials
// sentinel rather than a transport or provider failure.
func IsCredentialsRejected(err error) bool {
	return hasTextCode(err, TextCodeCredentialsRejected)
}

// IsRecordNotFound reports whether err means the target record is absent.
func IsRecordNotFound(err error) bool {
	return goerrors.IsNotFound(err) || hasTextCode(err, TextCodeNotFound)
}

// IsProviderFailure reports whether err came from the external identity
// service rather than this process.
func IsProviderFailure(err error) bool {
	return hasTextCode(err, TextCodeProviderError)
}

// IsForbidden reports whether err is an authorization rejection.
func IsForbidden(err error) bool {
	return hasTextCode(err, TextCodeForbidden)
}

// cloneWithCause copies a sentinel rich error and attaches the originating
// error plus metadata, keeping the sentinel itself immutable.
func cloneWithCause(sentinel *goerrors.Error, cause error, metadata map[string]any) *goerrors.Error {
	clone := sentinel.Clone()
	if clone == nil {
		return sentinel
	}
	clone.Source = cause
	if metadata != nil {
		return clone.WithMetadata(metadata)
	}
	return clone
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
