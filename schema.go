package userpool

import (
	"errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// CredentialsPayload is the request body for the registration/login boundary.
type CredentialsPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (p CredentialsPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.By(ValidatePasswordPolicy)),
		validation.Field(&p.Role, validation.Required, validation.In(RoleAdmin, RoleUser)),
	)
}

// Candidate converts the validated payload into a coordinator candidate.
func (p CredentialsPayload) Candidate() Candidate {
	return Candidate{
		Name:     p.Name,
		Email:    strings.TrimSpace(p.Email),
		Password: p.Password,
		Role:     UserRole(p.Role),
	}
}

// EditPayload is the request body for account edits. Absent fields are left
// untouched.
type EditPayload struct {
	Name *string `json:"name,omitempty"`
	Role *string `json:"role,omitempty"`
}

func (p EditPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(1, 200)),
		validation.Field(&p.Role, validation.In(RoleAdmin, RoleUser)),
	)
}

// Changes converts the validated payload into local record changes.
func (p EditPayload) Changes() RecordChanges {
	changes := RecordChanges{Name: p.Name}
	if p.Role != nil {
		role := UserRole(*p.Role)
		changes.Role = &role
	}
	return changes
}

// EditQuery identifies the edit target.
type EditQuery struct {
	Email string `query:"email"`
}

func (q EditQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Email, validation.Required, is.Email),
	)
}

// Target returns the normalized target email, matching the trimming the
// registration path applies to candidates.
func (q EditQuery) Target() string {
	return strings.TrimSpace(q.Email)
}

// PageQuery is the paging window for listings.
type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

func (q PageQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Min(0)),
		validation.Field(&q.Limit, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// ValidatePasswordPolicy enforces the pool's password policy: at least 8
// characters with one uppercase letter, one lowercase letter, one digit,
// and one special character.
func ValidatePasswordPolicy(value any) error {
	password, _ := value.(string)

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if len(password) < 8 || !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return errors.New("must contain at least: 1 uppercase letter, 1 lowercase letter, 1 number, 1 special character, and at least 8 characters")
	}

	return nil
}
