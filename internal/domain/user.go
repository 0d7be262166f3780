package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// WatchStatus is the tracking state of a watchlist entry.
type WatchStatus string

const (
	StatusWatching  WatchStatus = "watching"
	StatusCompleted WatchStatus = "completed"
	StatusPlanned   WatchStatus = "planned"
	StatusDropped   WatchStatus = "dropped"
)

func (s WatchStatus) Valid() bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusPlanned, StatusDropped:
		return true
	}
	return false
}

// WatchStatuses returns all valid statuses in display order.
func WatchStatuses() []WatchStatus {
	return []WatchStatus{StatusCompleted, StatusDropped, StatusPlanned, StatusWatching}
}

// WatchlistEntry tracks a user's progress on one anime. MalID references
// the external catalog id and is never validated beyond a successful
// lookup at the moment of use.
type WatchlistEntry struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"user_id"`
	MalID           int         `json:"mal_id"`
	Status          WatchStatus `json:"status"`
	EpisodesWatched int         `json:"episodes_watched"`
	LastUpdated     time.Time   `json:"last_updated"`
}

// LocalReview is a review stored in the local database, as opposed to
// the upstream reviews surfaced by the catalog client.
type LocalReview struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	MalID      int       `json:"mal_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	ReviewDate time.Time `json:"review_date"`

	// Username is populated on reads that join against users.
	Username string `json:"username,omitempty"`
}
