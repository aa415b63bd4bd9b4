package userpool

// ClaimsGuard derives authorization decisions from verified token claims.
// It is stateless; the zero value is ready to use.
type ClaimsGuard struct{}

// Authorize permits the operation when the effective role is one of the
// allowed roles.
func (g ClaimsGuard) Authorize(claims AuthClaims, allowed ...UserRole) error {
	if claims == nil {
		return ErrTokenInvalid
	}

	role := claims.EffectiveRole()
	for _, r := range allowed {
		if role == r {
			return nil
		}
	}

	return cloneWithCause(ErrInsufficientRole, nil, map[string]any{
		"role": role,
	})
}

// AuthorizeEdit applies the edit-path rules: admins may edit anyone, others
// only themselves, and only admins may change a role, even on their own
// account. The self-access bypass never extends to listing.
func (g ClaimsGuard) AuthorizeEdit(claims AuthClaims, targetEmail string, changesRole bool) error {
	if claims == nil {
		return ErrTokenInvalid
	}

	role := claims.EffectiveRole()
	if role != RoleAdmin && claims.Subject() != targetEmail {
		return cloneWithCause(ErrInsufficientRole, nil, map[string]any{
			"role":   role,
			"target": targetEmail,
		})
	}

	if role != RoleAdmin && changesRole {
		return cloneWithCause(ErrRoleChangeForbidden, nil, map[string]any{
			"role":   role,
			"target": targetEmail,
		})
	}

	return nil
}
