package domain

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness constraint is violated.
var ErrDuplicate = errors.New("already exists")

// UserRepository defines storage for user accounts.
type UserRepository interface {
	Store(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// WatchlistRepository defines storage for watchlist entries.
type WatchlistRepository interface {
	// Upsert inserts the entry, or updates status and episode count if the
	// user already tracks the anime.
	Upsert(ctx context.Context, entry *WatchlistEntry) error
	Update(ctx context.Context, id, userID int64, status WatchStatus, episodesWatched int) error
	Delete(ctx context.Context, id, userID int64) error
	Find(ctx context.Context, userID int64, malID int) (*WatchlistEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]WatchlistEntry, error)
}

// ReviewRepository defines storage for locally authored reviews.
type ReviewRepository interface {
	// Upsert inserts the review, or replaces rating, text, and date if the
	// user already reviewed the anime.
	Upsert(ctx context.Context, review *LocalReview) error
	Delete(ctx context.Context, id, userID int64) error
	Find(ctx context.Context, id, userID int64) (*LocalReview, error)
	ListByAnime(ctx context.Context, malID int) ([]LocalReview, error)
	ListByUser(ctx context.Context, userID int64) ([]LocalReview, error)
}
