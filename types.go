package userpool

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Candidate carries the credentials and profile attributes supplied on the
// registration/login boundary.
type Candidate struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// TokenBundle is the set of credentials returned to a successfully
// authenticated or newly registered caller. Field names follow the wire
// shape the identity provider produces.
type TokenBundle struct {
	AccessToken  string `json:"AccessToken,omitempty"`
	ExpiresIn    int32  `json:"ExpiresIn,omitempty"`
	TokenType    string `json:"TokenType,omitempty"`
	RefreshToken string `json:"RefreshToken,omitempty"`
	IDToken      string `json:"IdToken,omitempty"`
}

// Registration is the outcome of provisioning a new external identity.
type Registration struct {
	// ExternalID is the provider's internal identifier for the new identity.
	ExternalID string
	Bundle     *TokenBundle
}

// GroupChange describes a group membership move. New is added before Old is
// removed so the identity is never left without a group.
type GroupChange struct {
	New UserRole
	Old UserRole
}

// ProfileChanges holds the remote-side updates for an edit. Nil fields are
// untouched.
type ProfileChanges struct {
	Name  *string
	Group *GroupChange
}

// CredentialProvider abstracts the external identity service. Credentials
// are never materialized locally; only their effects (token issuance, group
// membership) are observed through these calls.
type CredentialProvider interface {
	// Register creates the external identity, administratively confirms it,
	// assigns it to the group named by the candidate role, and returns an
	// issued token bundle.
	Register(ctx context.Context, candidate Candidate) (*Registration, error)

	// Authenticate validates the candidate credentials directly against the
	// provider (trusted-backend flow). Invalid credentials yield
	// ErrCredentialsRejected, distinct from transport or provider failures.
	Authenticate(ctx context.Context, candidate Candidate) (*TokenBundle, error)

	// UpdateProfile applies display-attribute and group changes as separate
	// remote calls: name first, then add the new group, then remove the old
	// one. A failed group add prevents the removal from running; a failed
	// removal after a successful add is reported without rolling the add back.
	UpdateProfile(ctx context.Context, email string, changes ProfileChanges) error
}

// AuthClaims are the decoded claims of a verified bearer token.
type AuthClaims interface {
	Subject() string
	Groups() []string
	EffectiveRole() UserRole
	Expires() time.Time
	IssuedAt() time.Time
}

// DefaultLogger is the fallback Logger used when none is configured.
var DefaultLogger Logger = defLogger{}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USERPOOL "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] USERPOOL "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USERPOOL "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USERPOOL "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
