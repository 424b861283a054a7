package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookstore-service/bookstore/internal/model"
	"github.com/bookstore-service/bookstore/internal/notify"
)

type Repository interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, message string) (model.Notification, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) ([]model.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, unreadOnly, page, size)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (model.Notification, error) {
	return s.repo.MarkNotificationRead(ctx, userID, notificationID, time.Now().UTC())
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID, time.Now().UTC())
}

// RecordEvent fans a borrowing event out into notification rows. Request
// events go to every librarian; resolution and return events go to the reader
// involved.
func (s *Service) RecordEvent(ctx context.Context, event notify.Event) error {
	switch event.Kind {
	case notify.EventRequestCreated:
		librarians, err := s.repo.ListUsersByRole(ctx, model.RoleLibrarian)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("new borrow request %s for book %s", event.EntityID, event.BookID)
		gg, ctx := errgroup.WithContext(ctx)
		for _, librarian := range librarians {
			librarian := librarian
			gg.Go(func() error {
				_, err := s.repo.CreateNotification(ctx, librarian.ID, msg)
				return err
			})
		}
		return gg.Wait()
	case notify.EventRequestApproved:
		_, err := s.repo.CreateNotification(ctx, event.UserID,
			fmt.Sprintf("your borrow request for book %s was approved", event.BookID))
		return err
	case notify.EventRequestRejected:
		_, err := s.repo.CreateNotification(ctx, event.UserID,
			fmt.Sprintf("your borrow request for book %s was rejected", event.BookID))
		return err
	case notify.EventBookReturned:
		_, err := s.repo.CreateNotification(ctx, event.UserID,
			fmt.Sprintf("return of book %s is registered", event.BookID))
		return err
	default:
		s.log.Warn("unknown event kind", zap.String("kind", string(event.Kind)))
		return nil
	}
}
