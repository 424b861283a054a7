package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
)

func (r *repository) CreateNotification(ctx context.Context, userID uuid.UUID, message string) (model.Notification, error) {
	q := `
	insert into notifications (user_id, message)
	values ($1, $2)
	returning *`

	var n model.Notification
	if err := r.do(ctx, "CreateNotification", func() error {
		return r.db.GetContext(ctx, &n, q, userID, message)
	}); err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

func (r *repository) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) ([]model.Notification, error) {
	q := qb.Select("*").
		From(notificationsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("sent_at desc")

	if unreadOnly {
		q = q.Where(sq.Eq{"read_at": nil})
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.Notification
	if err := r.do(ctx, "ListNotifications", func() error {
		return r.db.SelectContext(ctx, &items, query, args...)
	}); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (model.Notification, error) {
	q := `
	update notifications set read_at = $3, updated_at = now()
	where id = $1 and user_id = $2 and read_at is null
	returning *`

	var n model.Notification
	if err := r.do(ctx, "MarkNotificationRead", func() error {
		return r.db.GetContext(ctx, &n, q, notificationID, userID, now)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, errs.ErrNotFound
		}
		return model.Notification{}, err
	}
	return n, nil
}

func (r *repository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	q := `
	update notifications set read_at = $2, updated_at = now()
	where user_id = $1 and read_at is null`

	var affected int64
	err := r.do(ctx, "MarkAllNotificationsRead", func() error {
		res, err := r.db.ExecContext(ctx, q, userID, now)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}
