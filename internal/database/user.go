package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varoOP/aniwatch/internal/domain"
)

// UserRepo implements domain.UserRepository on SQLite.
type UserRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewUserRepo(log zerolog.Logger, db *DB) domain.UserRepository {
	return &UserRepo{
		log: log.With().Str("repo", "user").Logger(),
		db:  db,
	}
}

func (r *UserRepo) Store(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()

	queryBuilder := r.db.squirrel.
		Insert("users").
		Columns("username", "email", "password_hash", "created_at").
		Values(user.Username, user.Email, user.PasswordHash, now.Format(time.RFC3339))

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Store")

	res, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.Wrap(domain.ErrDuplicate, "username or email already exists")
		}
		return errors.Wrap(err, "error executing query")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "error getting insert id")
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"username": username})
}

func (r *UserRepo) findOne(ctx context.Context, where sq.Eq) (*domain.User, error) {
	queryBuilder := r.db.squirrel.
		Select("id", "username", "email", "password_hash", "created_at").
		From("users").
		Where(where)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("findOne")

	var (
		user      domain.User
		createdAt string
	)
	err = r.db.handler.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "error executing query")
	}

	user.CreatedAt = parseTime(createdAt)
	return &user, nil
}
