package userpool

import (
	"context"
)

var recordCtxKey = &contextKey{"record"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithRecordContext sets the UserRecord in the given context
func WithRecordContext(ctx context.Context, record *UserRecord) context.Context {
	return context.WithValue(ctx, recordCtxKey, record)
}

// RecordFromContext finds the user record from the context.
func RecordFromContext(ctx context.Context) (*UserRecord, bool) {
	raw, ok := ctx.Value(recordCtxKey).(*UserRecord)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// IsAdmin reports whether the claims in ctx carry the admin role.
func IsAdmin(ctx context.Context) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return claims.EffectiveRole() == RoleAdmin
}
