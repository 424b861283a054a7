package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/model"
	"github.com/bookstore-service/bookstore/internal/notify"
)

type fakeRepo struct {
	mu         sync.Mutex
	librarians []model.User
	created    map[uuid.UUID][]string
}

func newFakeRepo(librarians ...model.User) *fakeRepo {
	return &fakeRepo{
		librarians: librarians,
		created:    make(map[uuid.UUID][]string),
	}
}

func (r *fakeRepo) CreateNotification(_ context.Context, userID uuid.UUID, message string) (model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created[userID] = append(r.created[userID], message)
	return model.Notification{ID: uuid.New(), UserID: userID, Message: message}, nil
}

func (r *fakeRepo) ListNotifications(_ context.Context, _ uuid.UUID, _ bool, _, _ int) ([]model.Notification, error) {
	return nil, nil
}

func (r *fakeRepo) MarkNotificationRead(_ context.Context, _, _ uuid.UUID, _ time.Time) (model.Notification, error) {
	return model.Notification{}, nil
}

func (r *fakeRepo) MarkAllNotificationsRead(_ context.Context, _ uuid.UUID, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeRepo) ListUsersByRole(_ context.Context, role model.Role) ([]model.User, error) {
	if role == model.RoleLibrarian {
		return r.librarians, nil
	}
	return nil, nil
}

func TestRecordEvent_Routing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reader := uuid.New()
	lib1, lib2 := uuid.New(), uuid.New()
	book := uuid.New()

	t.Run("request created goes to every librarian", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo(model.User{ID: lib1}, model.User{ID: lib2})
		svc := NewService(repo, zap.NewNop())

		err := svc.RecordEvent(ctx, notify.Event{
			Kind: notify.EventRequestCreated, UserID: reader, BookID: book, EntityID: uuid.New(),
		})
		require.NoError(t, err)
		require.Len(t, repo.created[lib1], 1)
		require.Len(t, repo.created[lib2], 1)
		require.Empty(t, repo.created[reader])
	})

	t.Run("resolution events go to the reader", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo(model.User{ID: lib1})
		svc := NewService(repo, zap.NewNop())

		for _, kind := range []notify.EventKind{
			notify.EventRequestApproved, notify.EventRequestRejected, notify.EventBookReturned,
		} {
			err := svc.RecordEvent(ctx, notify.Event{Kind: kind, UserID: reader, BookID: book})
			require.NoError(t, err)
		}
		require.Len(t, repo.created[reader], 3)
		require.Empty(t, repo.created[lib1])
	})

	t.Run("unknown kind is dropped", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc := NewService(repo, zap.NewNop())

		err := svc.RecordEvent(ctx, notify.Event{Kind: notify.EventKind("mystery"), UserID: reader})
		require.NoError(t, err)
		require.Empty(t, repo.created)
	})
}
