// Package userpool keeps user identity consistent across two systems of
// record: a local relational store holding profile data, and an external
// identity provider (an AWS Cognito user pool) that owns credentials, group
// membership, and token issuance.
//
// The package exposes three coordinators: IdentitySync decides
// create-vs-login on the registration boundary, RoleChange applies profile
// and role edits across both stores in a fixed order, and ClaimsGuard gates
// operations by the effective role carried in verified token claims.
package userpool
