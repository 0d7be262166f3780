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

func TestReviewRepo_UpsertReplacesExisting(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepo(zerolog.Nop(), db)
	ctx := context.Background()

	user := storeTestUser(t, db, "pen-pen")

	require.NoError(t, repo.Upsert(ctx, &domain.LocalReview{
		UserID: user.ID,
		MalID:  30,
		Rating: 6,
		Text:   "promising start",
	}))
	require.NoError(t, repo.Upsert(ctx, &domain.LocalReview{
		UserID: user.ID,
		MalID:  30,
		Rating: 10,
		Text:   "a masterpiece after all",
	}))

	reviews, err := repo.ListByAnime(ctx, 30)
	require.NoError(t, err)
	require.Len(t, reviews, 1, "one review per user per anime")
	assert.Equal(t, 10, reviews[0].Rating)
	assert.Equal(t, "a masterpiece after all", reviews[0].Text)
	assert.Equal(t, "pen-pen", reviews[0].Username)
	assert.False(t, reviews[0].ReviewDate.IsZero())
}

func TestReviewRepo_ListByAnimeJoinsUsernames(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepo(zerolog.Nop(), db)
	ctx := context.Background()

	alice := storeTestUser(t, db, "alice")
	bob := storeTestUser(t, db, "bob")

	require.NoError(t, repo.Upsert(ctx, &domain.LocalReview{UserID: alice.ID, MalID: 30, Rating: 9, Text: "great"}))
	require.NoError(t, repo.Upsert(ctx, &domain.LocalReview{UserID: bob.ID, MalID: 30, Rating: 5, Text: "fine"}))
	require.NoError(t, repo.Upsert(ctx, &domain.LocalReview{UserID: alice.ID, MalID: 269, Rating: 7, Text: "long"}))

	reviews, err := repo.ListByAnime(ctx, 30)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	for _, review := range reviews {
		assert.Equal(t, 30, review.MalID)
		assert.NotEmpty(t, review.Username)
	}

	// Same-timestamp rows come back newest id first.
	assert.Equal(t, "bob", reviews[0].Username)
	assert.Equal(t, "alice", reviews[1].Username)

	reviews, err = repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestReviewRepo_DeleteScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepo(zerolog.Nop(), db)
	ctx := context.Background()

	owner := storeTestUser(t, db, "owner")
	other := storeTestUser(t, db, "other")

	require.NoError(t, repo.Upsert(ctx, &domain.LocalReview{UserID: owner.ID, MalID: 30, Rating: 8, Text: "solid"}))
	reviews, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	id := reviews[0].ID

	err = repo.Delete(ctx, id, other.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = repo.Find(ctx, id, other.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	found, err := repo.Find(ctx, id, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, found.Rating)

	require.NoError(t, repo.Delete(ctx, id, owner.ID))
	reviews, err = repo.ListByAnime(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
