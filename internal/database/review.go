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

// ReviewRepo implements domain.ReviewRepository on SQLite.
type ReviewRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewReviewRepo(log zerolog.Logger, db *DB) domain.ReviewRepository {
	return &ReviewRepo{
		log: log.With().Str("repo", "review").Logger(),
		db:  db,
	}
}

func (r *ReviewRepo) Upsert(ctx context.Context, review *domain.LocalReview) error {
	now := time.Now().UTC()

	queryBuilder := r.db.squirrel.
		Insert("reviews").
		Columns("user_id", "mal_id", "rating", "review_text", "review_date").
		Values(review.UserID, review.MalID, review.Rating, review.Text, now.Format(time.RFC3339)).
		Suffix(`ON CONFLICT(user_id, mal_id) DO UPDATE SET
			rating = excluded.rating,
			review_text = excluded.review_text,
			review_date = excluded.review_date
			RETURNING id`)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Upsert")

	if err := r.db.handler.QueryRowContext(ctx, query, args...).Scan(&review.ID); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	review.ReviewDate = now
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id, userID int64) error {
	queryBuilder := r.db.squirrel.
		Delete("reviews").
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

func (r *ReviewRepo) Find(ctx context.Context, id, userID int64) (*domain.LocalReview, error) {
	queryBuilder := r.db.squirrel.
		Select("id", "user_id", "mal_id", "rating", "review_text", "review_date").
		From("reviews").
		Where(sq.Eq{"id": id, "user_id": userID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Find")

	var (
		review     domain.LocalReview
		reviewDate string
	)
	err = r.db.handler.QueryRowContext(ctx, query, args...).
		Scan(&review.ID, &review.UserID, &review.MalID, &review.Rating, &review.Text, &reviewDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "error executing query")
	}

	review.ReviewDate = parseTime(reviewDate)
	return &review, nil
}

func (r *ReviewRepo) ListByAnime(ctx context.Context, malID int) ([]domain.LocalReview, error) {
	queryBuilder := r.db.squirrel.
		Select("r.id", "r.user_id", "r.mal_id", "r.rating", "r.review_text", "r.review_date", "u.username").
		From("reviews r").
		Join("users u ON u.id = r.user_id").
		Where(sq.Eq{"r.mal_id": malID}).
		OrderBy("r.review_date DESC", "r.id DESC")

	return r.list(ctx, queryBuilder)
}

func (r *ReviewRepo) ListByUser(ctx context.Context, userID int64) ([]domain.LocalReview, error) {
	queryBuilder := r.db.squirrel.
		Select("r.id", "r.user_id", "r.mal_id", "r.rating", "r.review_text", "r.review_date", "u.username").
		From("reviews r").
		Join("users u ON u.id = r.user_id").
		Where(sq.Eq{"r.user_id": userID}).
		OrderBy("r.review_date DESC", "r.id DESC")

	return r.list(ctx, queryBuilder)
}

func (r *ReviewRepo) list(ctx context.Context, queryBuilder sq.SelectBuilder) ([]domain.LocalReview, error) {
	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("list")

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	reviews := []domain.LocalReview{}
	for rows.Next() {
		var (
			review     domain.LocalReview
			reviewDate string
		)
		if err := rows.Scan(&review.ID, &review.UserID, &review.MalID, &review.Rating, &review.Text, &reviewDate, &review.Username); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		review.ReviewDate = parseTime(reviewDate)
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return reviews, nil
}
