package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
)

func (r *repository) CreateUser(ctx context.Context, email, hashedPassword string, role model.Role) (model.User, error) {
	q := `
	insert into users (email, hashed_password, role)
	values ($1, $2, $3)
	returning *`

	var user model.User
	if err := r.do(ctx, "CreateUser", func() error {
		return r.db.GetContext(ctx, &user, q, email, hashedPassword, role)
	}); err != nil {
		r.log.Error("CreateUser", zap.String("email", email), zap.Error(err))
		return model.User{}, mapPgError(err)
	}
	return user, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	query, args, err := qb.Select("*").
		From(usersTableName).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.do(ctx, "GetUserByEmail", func() error {
		return r.db.GetContext(ctx, &user, query, args...)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	query, args, err := qb.Select("*").
		From(usersTableName).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.do(ctx, "GetUser", func() error {
		return r.db.GetContext(ctx, &user, query, args...)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	query, args, err := qb.Select("*").
		From(usersTableName).
		Where(sq.Eq{"role": role, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []model.User
	if err := r.do(ctx, "ListUsersByRole", func() error {
		return r.db.SelectContext(ctx, &users, query, args...)
	}); err != nil {
		return nil, err
	}
	return users, nil
}
