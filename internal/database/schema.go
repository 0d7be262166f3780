package database

const schema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE watchlist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	mal_id INTEGER NOT NULL,
	status TEXT NOT NULL,
	episodes_watched INTEGER NOT NULL DEFAULT 0,
	last_updated TIMESTAMP NOT NULL,
	UNIQUE(user_id, mal_id)
);

CREATE INDEX idx_watchlist_user ON watchlist(user_id);
CREATE INDEX idx_watchlist_mal ON watchlist(mal_id);

CREATE TABLE reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	mal_id INTEGER NOT NULL,
	rating INTEGER NOT NULL,
	review_text TEXT NOT NULL DEFAULT '',
	review_date TIMESTAMP NOT NULL,
	UNIQUE(user_id, mal_id)
);

CREATE INDEX idx_reviews_user ON reviews(user_id);
CREATE INDEX idx_reviews_mal ON reviews(mal_id);
`

// migrations contains incremental schema changes
// Each migration is applied in order based on the current user_version
// migrations[0] is empty because version 0 uses the base schema
var migrations = []string{
	"", // Version 0 is the base schema, so migrations[0] is empty
}
