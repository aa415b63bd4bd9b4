package userpool_test

import (
	"database/sql"
	"testing"

	"github.com/nvarela/go-userpool"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const createUsersTable = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    user_role TEXT NOT NULL,
    is_onboarded BOOLEAN NOT NULL DEFAULT FALSE,
    external_id TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`

func newTestManager(t *testing.T) userpool.RepositoryManager {
	manager, _ := newTestManagerDB(t)
	return manager
}

func newTestManagerDB(t *testing.T) (userpool.RepositoryManager, *bun.DB) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(createUsersTable)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return userpool.NewRepositoryManager(bunDB), bunDB
}

func userClaims(email string) *userpool.GroupClaims {
	return &userpool.GroupClaims{
		Username:      email,
		CognitoGroups: []string{userpool.RoleUser},
	}
}

func adminClaims(email string) *userpool.GroupClaims {
	return &userpool.GroupClaims{
		Username:      email,
		CognitoGroups: []string{userpool.RoleAdmin},
	}
}

func strPtr(s string) *string {
	return &s
}

func rolePtr(r userpool.UserRole) *userpool.UserRole {
	return &r
}
