package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
)

// SearchTitles projects titles with live copy counts. Reads run against
// committed state only; no locking.
func (r *repository) SearchTitles(ctx context.Context, filter model.TitleSearchFilter) (model.ListTitles, error) {
	q := qb.Select(
		"t.id", "t.title", "t.author", "t.isbn", "t.description", "t.publisher",
		"t.category_id", "t.created_at", "t.updated_at",
		"count(b.id) as total_copies",
		fmt.Sprintf("count(b.id) filter (where b.status = '%s') as available_copies", model.CopyAvailable),
	).
		From(titlesTableName + " t").
		LeftJoin(fmt.Sprintf("%s b on b.title_id = t.id", booksTableName)).
		GroupBy("t.id").
		OrderBy("t.title")

	if filter.Title != "" {
		q = q.Where(sq.ILike{"t.title": "%" + filter.Title + "%"})
	}
	if filter.Author != "" {
		q = q.Where(sq.ILike{"t.author": "%" + filter.Author + "%"})
	}
	if filter.CategoryID != uuid.Nil {
		q = q.Where(sq.Eq{"t.category_id": filter.CategoryID})
	}
	if filter.Available != nil {
		cmp := "= 0"
		if *filter.Available {
			cmp = "> 0"
		}
		q = q.Having(fmt.Sprintf("count(b.id) filter (where b.status = '%s') %s", model.CopyAvailable, cmp))
	}
	if filter.Page != 0 && filter.Size != 0 {
		q = q.Limit(uint64(filter.Size)).Offset(uint64((filter.Page - 1) * filter.Size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListTitles{}, err
	}
	r.log.Debug("SearchTitles", zap.String("query", query), zap.Any("args", args))

	var titles []model.TitleSummary
	if err := r.do(ctx, "SearchTitles", func() error {
		return r.db.SelectContext(ctx, &titles, query, args...)
	}); err != nil {
		return model.ListTitles{}, err
	}

	return model.ListTitles{
		Paging: model.Paging{
			Page:          filter.Page,
			PageSize:      filter.Size,
			TotalElements: len(titles),
		},
		Items: titles,
	}, nil
}

func (r *repository) GetTitle(ctx context.Context, titleID uuid.UUID) (model.BookTitle, error) {
	query, args, err := qb.Select("*").
		From(titlesTableName).
		Where(sq.Eq{"id": titleID}).
		ToSql()
	if err != nil {
		return model.BookTitle{}, err
	}

	var title model.BookTitle
	if err := r.do(ctx, "GetTitle", func() error {
		return r.db.GetContext(ctx, &title, query, args...)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BookTitle{}, errs.ErrNotFound
		}
		return model.BookTitle{}, err
	}
	return title, nil
}

func (r *repository) ListCopies(ctx context.Context, titleID uuid.UUID, onlyAvailable bool) ([]model.BookCopy, error) {
	q := qb.Select("*").
		From(booksTableName).
		Where(sq.Eq{"title_id": titleID}).
		OrderBy("barcode")

	if onlyAvailable {
		q = q.Where(sq.Eq{"status": model.CopyAvailable})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var copies []model.BookCopy
	if err := r.do(ctx, "ListCopies", func() error {
		return r.db.SelectContext(ctx, &copies, query, args...)
	}); err != nil {
		return nil, err
	}
	return copies, nil
}
