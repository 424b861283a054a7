package borrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
	"github.com/bookstore-service/bookstore/internal/notify"
	"github.com/bookstore-service/bookstore/internal/service/auth"
)

// Gateway is the persistence surface the engine drives. Every transition
// method is a single atomic read-modify-write: a compare-and-swap guard on the
// copy status backs each one, so of two racing transitions exactly one
// commits and the loser gets errs.ErrConflict.
type Gateway interface {
	GetCopy(ctx context.Context, copyID uuid.UUID) (model.BookCopy, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (model.BorrowRequest, error)
	GetRecord(ctx context.Context, recordID uuid.UUID) (model.BorrowRecord, error)
	CreateRequest(ctx context.Context, userID, copyID uuid.UUID, now time.Time) (model.BorrowRequest, error)
	ApproveRequest(ctx context.Context, requestID uuid.UUID, borrowed, due time.Time) (model.BorrowRecord, error)
	RejectRequest(ctx context.Context, requestID uuid.UUID) (model.BorrowRequest, error)
	ReturnRecord(ctx context.Context, recordID uuid.UUID, returnDate time.Time) (model.BorrowRecord, error)
	MarkRecordLost(ctx context.Context, recordID uuid.UUID) (model.BorrowRecord, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	ListPendingRequests(ctx context.Context, page, size int) ([]model.BorrowRequest, error)
	ListRecords(ctx context.Context, userID uuid.UUID, statuses []model.RecordStatus, page, size int) (model.ListRecords, error)
}

const DefaultLoanPeriod = 14 * 24 * time.Hour

type Config struct {
	LoanPeriod time.Duration
}

type Service struct {
	cfg   Config
	repo  Gateway
	sink  notify.Sink
	clock Clock
	log   *zap.Logger
}

func NewService(cfg Config, repo Gateway, sink notify.Sink, clock Clock, log *zap.Logger) *Service {
	if cfg.LoanPeriod <= 0 {
		cfg.LoanPeriod = DefaultLoanPeriod
	}
	return &Service{
		cfg:   cfg,
		repo:  repo,
		sink:  sink,
		clock: clock,
		log:   log,
	}
}

// RequestBorrow moves an available copy to requested and opens a pending
// request for the actor.
func (s *Service) RequestBorrow(ctx context.Context, actor model.Actor, copyID uuid.UUID) (model.BorrowRequest, error) {
	if !auth.Authorize(actor.Role, auth.OpRequestBorrow) {
		return model.BorrowRequest{}, errs.ErrForbidden
	}

	bookCopy, err := s.repo.GetCopy(ctx, copyID)
	if err != nil {
		return model.BorrowRequest{}, err
	}
	if bookCopy.Status != model.CopyAvailable {
		return model.BorrowRequest{}, errs.ErrConflict
	}

	req, err := s.repo.CreateRequest(ctx, actor.UserID, copyID, s.clock.Now())
	if err != nil {
		return model.BorrowRequest{}, err
	}

	s.sink.Publish(ctx, notify.Event{
		Kind:     notify.EventRequestCreated,
		UserID:   req.UserID,
		BookID:   req.BookID,
		EntityID: req.ID,
		At:       req.RequestedAt,
	})
	return req, nil
}

// ApproveRequest resolves a pending request into an active borrow record.
// Two concurrent approvals of requests referencing one copy race on the
// requested->borrowed swap; the loser gets errs.ErrConflict.
func (s *Service) ApproveRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, dueOverride *time.Time) (model.BorrowRecord, error) {
	if !auth.Authorize(actor.Role, auth.OpApproveRequest) {
		return model.BorrowRecord{}, errs.ErrForbidden
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if req.Status != model.RequestPending {
		return model.BorrowRecord{}, errs.ErrInvalidState
	}

	now := s.clock.Now()
	due := now.Add(s.cfg.LoanPeriod)
	if dueOverride != nil {
		if !dueOverride.After(now) {
			return model.BorrowRecord{}, errs.ErrInvalidState
		}
		due = *dueOverride
	}

	rec, err := s.repo.ApproveRequest(ctx, requestID, now, due)
	if err != nil {
		return model.BorrowRecord{}, err
	}

	s.sink.Publish(ctx, notify.Event{
		Kind:     notify.EventRequestApproved,
		UserID:   rec.UserID,
		BookID:   rec.BookID,
		EntityID: rec.ID,
		At:       rec.BorrowedDate,
	})
	return rec, nil
}

func (s *Service) RejectRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID) (model.BorrowRequest, error) {
	if !auth.Authorize(actor.Role, auth.OpRejectRequest) {
		return model.BorrowRequest{}, errs.ErrForbidden
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return model.BorrowRequest{}, err
	}
	if req.Status != model.RequestPending {
		return model.BorrowRequest{}, errs.ErrInvalidState
	}

	rejected, err := s.repo.RejectRequest(ctx, requestID)
	if err != nil {
		return model.BorrowRequest{}, err
	}

	s.sink.Publish(ctx, notify.Event{
		Kind:     notify.EventRequestRejected,
		UserID:   rejected.UserID,
		BookID:   rejected.BookID,
		EntityID: rejected.ID,
		At:       s.clock.Now(),
	})
	return rejected, nil
}

// ReturnBook closes an active record and frees the copy. Readers may only
// return their own records; existence is not masked for them.
func (s *Service) ReturnBook(ctx context.Context, actor model.Actor, recordID uuid.UUID) (model.BorrowRecord, error) {
	if !auth.Authorize(actor.Role, auth.OpReturnBook) {
		return model.BorrowRecord{}, errs.ErrForbidden
	}

	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if actor.Role == model.RoleReader && rec.UserID != actor.UserID {
		return model.BorrowRecord{}, errs.ErrForbidden
	}
	if !rec.Active() {
		return model.BorrowRecord{}, errs.ErrInvalidState
	}

	returned, err := s.repo.ReturnRecord(ctx, recordID, s.clock.Now())
	if err != nil {
		return model.BorrowRecord{}, err
	}

	s.sink.Publish(ctx, notify.Event{
		Kind:     notify.EventBookReturned,
		UserID:   returned.UserID,
		BookID:   returned.BookID,
		EntityID: returned.ID,
		At:       *returned.ReturnDate,
	})
	return returned, nil
}

func (s *Service) MarkLost(ctx context.Context, actor model.Actor, recordID uuid.UUID) (model.BorrowRecord, error) {
	if !auth.Authorize(actor.Role, auth.OpMarkLost) {
		return model.BorrowRecord{}, errs.ErrForbidden
	}

	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if !rec.Active() {
		return model.BorrowRecord{}, errs.ErrInvalidState
	}

	return s.repo.MarkRecordLost(ctx, recordID)
}

// MarkOverdue sweeps borrowed records past due into overdue. Idempotent; the
// copy status stays borrowed.
func (s *Service) MarkOverdue(ctx context.Context, actor model.Actor) (int64, error) {
	if !auth.Authorize(actor.Role, auth.OpMarkOverdue) {
		return 0, errs.ErrForbidden
	}
	n, err := s.repo.MarkOverdue(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("overdue sweep", zap.Int64("records", n))
	}
	return n, nil
}

func (s *Service) ListPendingRequests(ctx context.Context, actor model.Actor, page, size int) ([]model.BorrowRequest, error) {
	if !auth.Authorize(actor.Role, auth.OpListRequests) {
		return nil, errs.ErrForbidden
	}
	return s.repo.ListPendingRequests(ctx, page, size)
}

// History lists a user's borrow records. Readers see only their own.
func (s *Service) History(ctx context.Context, actor model.Actor, userID uuid.UUID, statuses []model.RecordStatus, page, size int) (model.ListRecords, error) {
	if userID != actor.UserID && !auth.Authorize(actor.Role, auth.OpViewAnyRecords) {
		return model.ListRecords{}, errs.ErrForbidden
	}
	return s.repo.ListRecords(ctx, userID, statuses, page, size)
}
