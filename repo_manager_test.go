package userpool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestRepositoryManagerValidate(t *testing.T) {
	repo := newTestManager(t)

	assert.NoError(t, repo.Validate())
	assert.NotPanics(t, repo.MustValidate)
}

func TestRepositoryManagerRunInTx(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)

	err := repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO users (id, name, email, user_role) VALUES (?, ?, ?, ?)",
			"11111111-1111-1111-1111-111111111111", "Pepe Rone", "pepe@example.com", "user")
		return err
	})
	require.NoError(t, err)

	stored, err := repo.Records().FindByEmail(ctx, "pepe@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Pepe Rone", stored.Name)
}

func TestRepositoryManagerRunInTxCanceledContext(t *testing.T) {
	repo := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		t.Fatal("transaction body should not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
