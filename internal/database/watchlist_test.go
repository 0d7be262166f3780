package database

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varoOP/aniwatch/internal/domain"
)

func TestWatchlistRepo_UpsertAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewWatchlistRepo(zerolog.Nop(), db)
	ctx := context.Background()

	user := storeTestUser(t, db, "misato")

	entry := &domain.WatchlistEntry{
		UserID:          user.ID,
		MalID:           30,
		Status:          domain.StatusWatching,
		EpisodesWatched: 4,
	}
	require.NoError(t, repo.Upsert(ctx, entry))
	assert.False(t, entry.LastUpdated.IsZero())

	got, err := repo.Find(ctx, user.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWatching, got.Status)
	assert.Equal(t, 4, got.EpisodesWatched)
	assert.NotZero(t, got.ID)
}

func TestWatchlistRepo_UpsertReplacesExisting(t *testing.T) {
	db := newTestDB(t)
	repo := NewWatchlistRepo(zerolog.Nop(), db)
	ctx := context.Background()

	user := storeTestUser(t, db, "kaji")

	require.NoError(t, repo.Upsert(ctx, &domain.WatchlistEntry{
		UserID: user.ID,
		MalID:  30,
		Status: domain.StatusPlanned,
	}))
	require.NoError(t, repo.Upsert(ctx, &domain.WatchlistEntry{
		UserID:          user.ID,
		MalID:           30,
		Status:          domain.StatusCompleted,
		EpisodesWatched: 26,
	}))

	entries, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "a second upsert for the same anime must not add a row")
	assert.Equal(t, domain.StatusCompleted, entries[0].Status)
	assert.Equal(t, 26, entries[0].EpisodesWatched)
}

func TestWatchlistRepo_UpdateAndDeleteScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewWatchlistRepo(zerolog.Nop(), db)
	ctx := context.Background()

	owner := storeTestUser(t, db, "owner")
	other := storeTestUser(t, db, "other")

	require.NoError(t, repo.Upsert(ctx, &domain.WatchlistEntry{
		UserID: owner.ID,
		MalID:  30,
		Status: domain.StatusWatching,
	}))
	entry, err := repo.Find(ctx, owner.ID, 30)
	require.NoError(t, err)

	err = repo.Update(ctx, entry.ID, other.ID, domain.StatusDropped, 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "another user's id must not update the row")

	err = repo.Delete(ctx, entry.ID, other.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.Update(ctx, entry.ID, owner.ID, domain.StatusCompleted, 26))
	got, err := repo.Find(ctx, owner.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 26, got.EpisodesWatched)

	require.NoError(t, repo.Delete(ctx, entry.ID, owner.ID))
	_, err = repo.Find(ctx, owner.ID, 30)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestWatchlistRepo_ListByUserIsolated(t *testing.T) {
	db := newTestDB(t)
	repo := NewWatchlistRepo(zerolog.Nop(), db)
	ctx := context.Background()

	first := storeTestUser(t, db, "first")
	second := storeTestUser(t, db, "second")

	for _, malID := range []int{30, 269, 1735} {
		require.NoError(t, repo.Upsert(ctx, &domain.WatchlistEntry{
			UserID: first.ID,
			MalID:  malID,
			Status: domain.StatusPlanned,
		}))
	}
	require.NoError(t, repo.Upsert(ctx, &domain.WatchlistEntry{
		UserID: second.ID,
		MalID:  30,
		Status: domain.StatusWatching,
	}))

	entries, err := repo.ListByUser(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = repo.ListByUser(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 30, entries[0].MalID)
}

func TestWatchlistRepo_DeleteCascadesWithUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewWatchlistRepo(zerolog.Nop(), db)
	ctx := context.Background()

	user := storeTestUser(t, db, "gone")
	require.NoError(t, repo.Upsert(ctx, &domain.WatchlistEntry{
		UserID: user.ID,
		MalID:  30,
		Status: domain.StatusWatching,
	}))

	// Force the delete onto a fresh pooled connection; the cascade must
	// hold on every connection, not just the one that ran the setup.
	db.handler.SetMaxIdleConns(0)

	_, err := db.handler.ExecContext(ctx, "DELETE FROM users WHERE id = ?", user.ID)
	require.NoError(t, err)

	entries, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
