package userpool

import (
	"context"
)

// RoleChange applies profile and role edits across both stores. The
// provider is updated first: its group membership is what future issued
// tokens bake authorization from, so a failed local write leaves tokens
// honest, while the reverse order could silently grant or deny rights on
// the next token. If the provider call fails the local record is left
// untouched, one step behind the possibly partially updated provider.
type RoleChange struct {
	repo        RepositoryManager
	credentials CredentialProvider
	guard       ClaimsGuard
	logger      Logger
	activity    ActivitySink
}

// NewRoleChange returns a coordinator over the given stores.
func NewRoleChange(repo RepositoryManager, credentials CredentialProvider) *RoleChange {
	return &RoleChange{
		repo:        repo,
		credentials: credentials,
		logger:      defLogger{},
	}
}

func (rc *RoleChange) WithLogger(logger Logger) *RoleChange {
	if logger != nil {
		rc.logger = logger
	}
	return rc
}

// WithActivitySink attaches a best-effort audit sink for edit events.
func (rc *RoleChange) WithActivitySink(sink ActivitySink) *RoleChange {
	rc.activity = sink
	return rc
}

// EditUser authorizes the requester, then applies changes to the provider
// and, only once every remote sub-step has succeeded, to the local record.
func (rc *RoleChange) EditUser(ctx context.Context, targetEmail string, changes RecordChanges, claims AuthClaims) (*UserRecord, error) {
	if err := rc.guard.AuthorizeEdit(claims, targetEmail, changes.Role != nil); err != nil {
		return nil, err
	}

	target, err := rc.repo.Records().FindByEmail(ctx, targetEmail)
	if err != nil {
		return nil, err
	}

	profile := ProfileChanges{Name: changes.Name}
	if changes.Role != nil {
		profile.Group = &GroupChange{
			New: *changes.Role,
			Old: target.Role,
		}
	}

	if err := rc.credentials.UpdateProfile(ctx, targetEmail, profile); err != nil {
		rc.logger.Error("provider profile update for %s failed, local record unchanged: %v",
			targetEmail, err)
		if IsProviderFailure(err) {
			return nil, err
		}
		return nil, WrapProviderFailure(err, "profile update failed")
	}

	updated, err := rc.repo.Records().UpdateByEmail(ctx, targetEmail, changes)
	if err != nil {
		// The provider already applied the edit; report the divergence so
		// callers can tell "external updated, local did not" from "nothing
		// changed".
		rc.logger.Error("local persist for %s failed after provider update: %v",
			targetEmail, err)
		return nil, WrapPersistenceFailure(err, "local record update failed after provider update").
			WithMetadata(map[string]any{
				"email":            targetEmail,
				"provider_updated": true,
			})
	}

	metadata := map[string]any{}
	if changes.Role != nil {
		metadata["role"] = string(*changes.Role)
	}
	emitActivity(ctx, rc.activity, rc.logger, ActivityEvent{
		EventType: ActivityEventProfileEdited,
		Email:     targetEmail,
		Metadata:  metadata,
	})

	return updated, nil
}
