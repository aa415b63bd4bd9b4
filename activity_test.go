package userpool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nvarela/go-userpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type capturingSink struct {
	events []userpool.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, event userpool.ActivityEvent) error {
	c.events = append(c.events, event)
	return nil
}

func TestIdentitySyncEmitsActivity(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)
	provider := new(MockCredentialProvider)
	sink := &capturingSink{}

	provider.On("Register", mock.Anything, mock.Anything).
		Return(&userpool.Registration{ExternalID: "sub-123", Bundle: &userpool.TokenBundle{}}, nil).
		Once()

	sync := userpool.NewIdentitySync(repo, provider).WithActivitySink(sink)

	_, err := sync.AuthenticateOrRegister(ctx, userpool.Candidate{
		Name:     "Pepe Rone",
		Email:    "pepe@example.com",
		Password: "Password1!",
		Role:     userpool.RoleUser,
	})
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	assert.Equal(t, userpool.ActivityEventRegistered, sink.events[0].EventType)
	assert.Equal(t, "pepe@example.com", sink.events[0].Email)
	assert.False(t, sink.events[0].OccurredAt.IsZero())
}

func TestIdentitySyncEmitsRejectedActivity(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)
	provider := new(MockCredentialProvider)
	sink := &capturingSink{}

	seedRecord(t, repo, "Pepe Rone", "pepe@example.com", userpool.RoleUser)

	provider.On("Authenticate", mock.Anything, mock.Anything).
		Return(nil, userpool.ErrCredentialsRejected).
		Once()

	sync := userpool.NewIdentitySync(repo, provider).WithActivitySink(sink)

	_, err := sync.AuthenticateOrRegister(ctx, userpool.Candidate{
		Email:    "pepe@example.com",
		Password: "wrong",
	})
	require.Error(t, err)

	require.Len(t, sink.events, 1)
	assert.Equal(t, userpool.ActivityEventLoginRejected, sink.events[0].EventType)
}

func TestRoleChangeEmitsActivity(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)
	provider := new(MockCredentialProvider)
	sink := &capturingSink{}

	seedRecord(t, repo, "Mari Nara", "mari@example.com", userpool.RoleUser)

	provider.On("UpdateProfile", mock.Anything, "mari@example.com", mock.Anything).
		Return(nil).
		Once()

	edits := userpool.NewRoleChange(repo, provider).WithActivitySink(sink)

	_, err := edits.EditUser(ctx, "mari@example.com",
		userpool.RecordChanges{Role: rolePtr(userpool.RoleAdmin)},
		adminClaims("admin@example.com"))
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	assert.Equal(t, userpool.ActivityEventProfileEdited, sink.events[0].EventType)
	assert.Equal(t, "admin", sink.events[0].Metadata["role"])
}

func TestFailingSinkDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)
	provider := new(MockCredentialProvider)

	seedRecord(t, repo, "Pepe Rone", "pepe@example.com", userpool.RoleUser)

	provider.On("Authenticate", mock.Anything, mock.Anything).
		Return(&userpool.TokenBundle{AccessToken: "token"}, nil).
		Once()

	sink := userpool.ActivitySinkFunc(func(ctx context.Context, event userpool.ActivityEvent) error {
		return errors.New("sink unavailable")
	})

	sync := userpool.NewIdentitySync(repo, provider).WithActivitySink(sink)

	outcome, err := sync.AuthenticateOrRegister(ctx, userpool.Candidate{
		Email:    "pepe@example.com",
		Password: "Password1!",
	})
	require.NoError(t, err)
	assert.NotNil(t, outcome.Bundle)
}
