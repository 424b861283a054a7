package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookstore-service/bookstore/internal/model"
	authsvc "github.com/bookstore-service/bookstore/internal/service/auth"
	"github.com/bookstore-service/bookstore/internal/service/borrow"
	"github.com/bookstore-service/bookstore/internal/service/inventory"
	"github.com/bookstore-service/bookstore/internal/service/notification"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BorrowService interface {
	RequestBorrow(ctx context.Context, actor model.Actor, copyID uuid.UUID) (model.BorrowRequest, error)
	ApproveRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, dueOverride *time.Time) (model.BorrowRecord, error)
	RejectRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID) (model.BorrowRequest, error)
	ReturnBook(ctx context.Context, actor model.Actor, recordID uuid.UUID) (model.BorrowRecord, error)
	MarkLost(ctx context.Context, actor model.Actor, recordID uuid.UUID) (model.BorrowRecord, error)
	MarkOverdue(ctx context.Context, actor model.Actor) (int64, error)
	ListPendingRequests(ctx context.Context, actor model.Actor, page, size int) ([]model.BorrowRequest, error)
	History(ctx context.Context, actor model.Actor, userID uuid.UUID, statuses []model.RecordStatus, page, size int) (model.ListRecords, error)
}

type InventoryService interface {
	Search(ctx context.Context, filter model.TitleSearchFilter) (model.ListTitles, error)
	GetTitle(ctx context.Context, titleID uuid.UUID) (model.BookTitle, error)
	ListCopies(ctx context.Context, titleID uuid.UUID, onlyAvailable bool) ([]model.BookCopy, error)
}

type AuthService interface {
	Register(ctx context.Context, email, password string, role model.Role) (model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (model.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

var (
	_ BorrowService       = (*borrow.Service)(nil)
	_ InventoryService    = (*inventory.Service)(nil)
	_ AuthService         = (*authsvc.Service)(nil)
	_ NotificationService = (*notification.Service)(nil)
)
