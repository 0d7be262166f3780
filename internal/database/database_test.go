package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/varoOP/aniwatch/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func storeTestUser(t *testing.T, db *DB, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
	}
	require.NoError(t, NewUserRepo(zerolog.Nop(), db).Store(context.Background(), user))
	return user
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Ping())
}
