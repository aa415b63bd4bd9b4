package userpool

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account (i.e. self-service edits only)
	RoleUser UserRole = "user"
	// RoleAdmin is an admin account (i.e. listing, cross-user edits, role changes)
	RoleAdmin UserRole = "admin"
)

// UserRecord is the local user model. The role column is a cache of
// authorization state; the provider's group membership is the durable source
// of truth for the roles baked into issued tokens.
type UserRecord struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	IsOnboarded   bool       `bun:"is_onboarded" json:"is_onboarded"`
	ExternalID    string     `bun:"external_id,nullzero" json:"external_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// RecordChanges holds the local-side updates for an edit. Nil fields are
// untouched.
type RecordChanges struct {
	Name *string
	Role *UserRole
}

// IsEmpty reports whether the change set would touch nothing.
func (c RecordChanges) IsEmpty() bool {
	return c.Name == nil && c.Role == nil
}
