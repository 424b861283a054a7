package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
)

// casCopyStatus is the single guard behind every copy transition: the update
// applies only when the copy is still in the expected status, so two racing
// transitions cannot both win.
const casCopyStatus = `
update books set status = $3, updated_at = now()
where id = $1 and status = $2`

func copyTransition(ctx context.Context, tx *sqlx.Tx, copyID uuid.UUID, from, to model.CopyStatus) error {
	res, err := tx.ExecContext(ctx, casCopyStatus, copyID, from, to)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrConflict
	}
	return nil
}

func (r *repository) GetCopy(ctx context.Context, copyID uuid.UUID) (model.BookCopy, error) {
	query, args, err := qb.Select("*").
		From(booksTableName).
		Where(sq.Eq{"id": copyID}).
		ToSql()
	if err != nil {
		return model.BookCopy{}, err
	}

	var bookCopy model.BookCopy
	if err := r.do(ctx, "GetCopy", func() error {
		return r.db.GetContext(ctx, &bookCopy, query, args...)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BookCopy{}, errs.ErrNotFound
		}
		return model.BookCopy{}, err
	}
	return bookCopy, nil
}

func (r *repository) GetRequest(ctx context.Context, requestID uuid.UUID) (model.BorrowRequest, error) {
	query, args, err := qb.Select("*").
		From(requestsTableName).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return model.BorrowRequest{}, err
	}

	var req model.BorrowRequest
	if err := r.do(ctx, "GetRequest", func() error {
		return r.db.GetContext(ctx, &req, query, args...)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRequest{}, errs.ErrNotFound
		}
		return model.BorrowRequest{}, err
	}
	return req, nil
}

func (r *repository) GetRecord(ctx context.Context, recordID uuid.UUID) (model.BorrowRecord, error) {
	query, args, err := qb.Select("*").
		From(recordsTableName).
		Where(sq.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}

	var rec model.BorrowRecord
	if err := r.do(ctx, "GetRecord", func() error {
		return r.db.GetContext(ctx, &rec, query, args...)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

// CreateRequest flips the copy to requested and inserts a pending request in
// one transaction. The copy guard rejects unavailable copies; the partial
// unique index rejects a duplicate pending request for the same (user, book).
func (r *repository) CreateRequest(ctx context.Context, userID, copyID uuid.UUID, now time.Time) (model.BorrowRequest, error) {
	var req model.BorrowRequest
	err := r.do(ctx, "CreateRequest", func() error {
		return r.withTx(ctx, func(tx *sqlx.Tx) error {
			if err := copyTransition(ctx, tx, copyID, model.CopyAvailable, model.CopyRequested); err != nil {
				return err
			}
			q := `
	insert into book_requests (user_id, book_id, status, requested_at)
	values ($1, $2, $3, $4)
	returning *`
			if err := tx.GetContext(ctx, &req, q, userID, copyID, model.RequestPending, now); err != nil {
				r.log.Error("CreateRequest", zap.String("q", q), zap.Error(err))
				return mapPgError(err)
			}
			return nil
		})
	})
	if err != nil {
		return model.BorrowRequest{}, err
	}
	return req, nil
}

// ApproveRequest resolves a pending request and opens the borrow record. The
// guarded request update and the copy CAS make sure only one of two racing
// approvals commits.
func (r *repository) ApproveRequest(ctx context.Context, requestID uuid.UUID, borrowed, due time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.do(ctx, "ApproveRequest", func() error {
		return r.withTx(ctx, func(tx *sqlx.Tx) error {
			var req model.BorrowRequest
			q := `
	update book_requests set status = $2, updated_at = now()
	where id = $1 and status = $3
	returning *`
			if err := tx.GetContext(ctx, &req, q, requestID, model.RequestApproved, model.RequestPending); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errs.ErrInvalidState
				}
				return err
			}
			if err := copyTransition(ctx, tx, req.BookID, model.CopyRequested, model.CopyBorrowed); err != nil {
				return err
			}
			ins := `
	insert into borrow_records (user_id, book_id, status, borrowed_date, due_date)
	values ($1, $2, $3, $4, $5)
	returning *`
			if err := tx.GetContext(ctx, &rec, ins, req.UserID, req.BookID, model.RecordBorrowed, borrowed, due); err != nil {
				r.log.Error("ApproveRequest insert", zap.Error(err))
				return mapPgError(err)
			}
			return nil
		})
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) RejectRequest(ctx context.Context, requestID uuid.UUID) (model.BorrowRequest, error) {
	var req model.BorrowRequest
	err := r.do(ctx, "RejectRequest", func() error {
		return r.withTx(ctx, func(tx *sqlx.Tx) error {
			q := `
	update book_requests set status = $2, updated_at = now()
	where id = $1 and status = $3
	returning *`
			if err := tx.GetContext(ctx, &req, q, requestID, model.RequestRejected, model.RequestPending); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errs.ErrInvalidState
				}
				return err
			}
			return copyTransition(ctx, tx, req.BookID, model.CopyRequested, model.CopyAvailable)
		})
	})
	if err != nil {
		return model.BorrowRequest{}, err
	}
	return req, nil
}

func (r *repository) ReturnRecord(ctx context.Context, recordID uuid.UUID, returnDate time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.do(ctx, "ReturnRecord", func() error {
		return r.withTx(ctx, func(tx *sqlx.Tx) error {
			q := `
	update borrow_records set status = $2, return_date = $3, updated_at = now()
	where id = $1 and status in ($4, $5)
	returning *`
			if err := tx.GetContext(ctx, &rec, q, recordID,
				model.RecordReturned, returnDate, model.RecordBorrowed, model.RecordOverdue); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errs.ErrInvalidState
				}
				return err
			}
			return copyTransition(ctx, tx, rec.BookID, model.CopyBorrowed, model.CopyAvailable)
		})
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) MarkRecordLost(ctx context.Context, recordID uuid.UUID) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.do(ctx, "MarkRecordLost", func() error {
		return r.withTx(ctx, func(tx *sqlx.Tx) error {
			q := `
	update borrow_records set status = $2, updated_at = now()
	where id = $1 and status in ($3, $4)
	returning *`
			if err := tx.GetContext(ctx, &rec, q, recordID,
				model.RecordLost, model.RecordBorrowed, model.RecordOverdue); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errs.ErrInvalidState
				}
				return err
			}
			return copyTransition(ctx, tx, rec.BookID, model.CopyBorrowed, model.CopyLost)
		})
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

// MarkOverdue sweeps every due record into overdue. Idempotent: records
// already overdue do not match the filter.
func (r *repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	q := `
	update borrow_records set status = $1, updated_at = now()
	where status = $2 and due_date < $3`

	var affected int64
	err := r.do(ctx, "MarkOverdue", func() error {
		res, err := r.db.ExecContext(ctx, q, model.RecordOverdue, model.RecordBorrowed, now)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func (r *repository) ListPendingRequests(ctx context.Context, page, size int) ([]model.BorrowRequest, error) {
	q := qb.Select("*").
		From(requestsTableName).
		Where(sq.Eq{"status": model.RequestPending}).
		OrderBy("requested_at")

	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var reqs []model.BorrowRequest
	if err := r.do(ctx, "ListPendingRequests", func() error {
		return r.db.SelectContext(ctx, &reqs, query, args...)
	}); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *repository) ListRecords(ctx context.Context, userID uuid.UUID, statuses []model.RecordStatus, page, size int) (model.ListRecords, error) {
	q := qb.Select("*").
		From(recordsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("borrowed_date desc")

	if len(statuses) > 0 {
		q = q.Where(sq.Eq{"status": statuses})
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListRecords{}, err
	}
	r.log.Debug("ListRecords", zap.String("query", query), zap.Any("args", args))

	var recs []model.BorrowRecord
	if err := r.do(ctx, "ListRecords", func() error {
		return r.db.SelectContext(ctx, &recs, query, args...)
	}); err != nil {
		return model.ListRecords{}, err
	}

	return model.ListRecords{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(recs),
		},
		Items: recs,
	}, nil
}
