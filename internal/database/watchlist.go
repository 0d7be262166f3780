package database

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varoOP/aniwatch/internal/domain"
)

// WatchlistRepo implements domain.WatchlistRepository on SQLite.
type WatchlistRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewWatchlistRepo(log zerolog.Logger, db *DB) domain.WatchlistRepository {
	return &WatchlistRepo{
		log: log.With().Str("repo", "watchlist").Logger(),
		db:  db,
	}
}

func (r *WatchlistRepo) Upsert(ctx context.Context, entry *domain.WatchlistEntry) error {
	now := time.Now().UTC()

	queryBuilder := r.db.squirrel.
		Insert("watchlist").
		Columns("user_id", "mal_id", "status", "episodes_watched", "last_updated").
		Values(entry.UserID, entry.MalID, string(entry.Status), entry.EpisodesWatched, now.Format(time.RFC3339)).
		Suffix(`ON CONFLICT(user_id, mal_id) DO UPDATE SET
			status = excluded.status,
			episodes_watched = excluded.episodes_watched,
			last_updated = excluded.last_updated
			RETURNING id`)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Upsert")

	if err := r.db.handler.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	entry.LastUpdated = now
	return nil
}

func (r *WatchlistRepo) Update(ctx context.Context, id, userID int64, status domain.WatchStatus, episodesWatched int) error {
	queryBuilder := r.db.squirrel.
		Update("watchlist").
		Set("status", string(status)).
		Set("episodes_watched", episodesWatched).
		Set("last_updated", time.Now().UTC().Format(time.RFC3339)).
		Where(sq.Eq{"id": id, "user_id": userID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Update")

	res, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WatchlistRepo) Delete(ctx context.Context, id, userID int64) error {
	queryBuilder := r.db.squirrel.
		Delete("watchlist").
		Where(sq.Eq{"id": id, "user_id": userID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Delete")

	res, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WatchlistRepo) Find(ctx context.Context, userID int64, malID int) (*domain.WatchlistEntry, error) {
	queryBuilder := r.db.squirrel.
		Select("id", "user_id", "mal_id", "status", "episodes_watched", "last_updated").
		From("watchlist").
		Where(sq.Eq{"user_id": userID, "mal_id": malID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Find")

	entry, err := scanWatchlistEntry(r.db.handler.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "error executing query")
	}

	return entry, nil
}

func (r *WatchlistRepo) ListByUser(ctx context.Context, userID int64) ([]domain.WatchlistEntry, error) {
	queryBuilder := r.db.squirrel.
		Select("id", "user_id", "mal_id", "status", "episodes_watched", "last_updated").
		From("watchlist").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("last_updated DESC", "id DESC")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("ListByUser")

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	entries := []domain.WatchlistEntry{}
	for rows.Next() {
		entry, err := scanWatchlistEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWatchlistEntry(row rowScanner) (*domain.WatchlistEntry, error) {
	var (
		entry       domain.WatchlistEntry
		status      string
		lastUpdated string
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.MalID, &status, &entry.EpisodesWatched, &lastUpdated); err != nil {
		return nil, err
	}

	entry.Status = domain.WatchStatus(status)
	entry.LastUpdated = parseTime(lastUpdated)
	return &entry, nil
}
