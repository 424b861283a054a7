package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/handler"
	"github.com/bookstore-service/bookstore/internal/model"
	"github.com/bookstore-service/bookstore/pkg/auth"
	"github.com/bookstore-service/bookstore/pkg/validate"

	service_mocks "github.com/bookstore-service/bookstore/internal/handler/mocks"
)

var (
	testActor = model.Actor{
		UserID: uuid.MustParse("3e3ee1f3-0c63-4b4e-95d8-bbcbcc2b1b0a"),
		Email:  "reader@example.com",
		Role:   model.RoleReader,
	}
	testLibrarian = model.Actor{
		UserID: uuid.MustParse("9a9f2f07-54a3-4a63-a98e-cfbc2c2c2c2c"),
		Email:  "librarian@example.com",
		Role:   model.RoleLibrarian,
	}
)

// withActor stands in for the JWT middleware.
func withActor(actor model.Actor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.SetActorContext(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func newTestEcho(t *testing.T) (*echo.Echo, *service_mocks.MockBorrowService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	svc := service_mocks.NewMockBorrowService(c)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	return e, svc
}

func TestHandler_RequestBorrow(t *testing.T) {
	t.Parallel()
	copyID := uuid.MustParse("f7cdc58f-2caf-4b15-9727-f89dcc629b27")
	requestID := uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	requestedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			body: fmt.Sprintf(`{"copyId":%q}`, copyID),
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					RequestBorrow(gomock.Any(), testActor, copyID).
					Return(model.BorrowRequest{
						ID:          requestID,
						UserID:      testActor.UserID,
						BookID:      copyID,
						Status:      model.RequestPending,
						RequestedAt: requestedAt,
					}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":"1b4e28ba-2fa1-11d2-883f-0016d3cca427","userId":"3e3ee1f3-0c63-4b4e-95d8-bbcbcc2b1b0a","bookId":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","status":"pending","requestedAt":"2024-03-01T12:00:00Z","createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`,
		},
		{
			name: "err. copy not available",
			body: fmt.Sprintf(`{"copyId":%q}`, copyID),
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					RequestBorrow(gomock.Any(), testActor, copyID).
					Return(model.BorrowRequest{}, errs.ErrConflict)
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"message":"conflict"}`,
		},
		{
			name: "err. copy not found",
			body: fmt.Sprintf(`{"copyId":%q}`, copyID),
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					RequestBorrow(gomock.Any(), testActor, copyID).
					Return(model.BorrowRequest{}, errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"message":"not found"}`,
		},
		{
			name:         "err. copyId required",
			body:         `{}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {},
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestEcho(t)
			h := handler.New(svc, nil, nil, nil, []byte("secret"), zap.NewNop())
			e.POST("/borrow/requests", h.RequestBorrow, withActor(testActor))

			r := httptest.NewRequest(http.MethodPost, "/borrow/requests", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_ApproveRequest(t *testing.T) {
	t.Parallel()
	requestID := uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	recordID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	copyID := uuid.MustParse("f7cdc58f-2caf-4b15-9727-f89dcc629b27")
	borrowed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	due := borrowed.Add(14 * 24 * time.Hour)

	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		requestID    string
		body         string
		actor        model.Actor
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name:      "ok",
			requestID: requestID.String(),
			body:      `{}`,
			actor:     testLibrarian,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), testLibrarian, requestID, gomock.Nil()).
					Return(model.BorrowRecord{
						ID:           recordID,
						UserID:       testActor.UserID,
						BookID:       copyID,
						Status:       model.RecordBorrowed,
						BorrowedDate: borrowed,
						DueDate:      due,
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","userId":"3e3ee1f3-0c63-4b4e-95d8-bbcbcc2b1b0a","bookId":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","status":"borrowed","borrowedDate":"2024-03-01T12:00:00Z","dueDate":"2024-03-15T12:00:00Z","returnDate":null,"createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`,
		},
		{
			name:      "err. already resolved",
			requestID: requestID.String(),
			body:      `{}`,
			actor:     testLibrarian,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), testLibrarian, requestID, gomock.Nil()).
					Return(model.BorrowRecord{}, errs.ErrInvalidState)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"invalid state"}`,
		},
		{
			name:      "err. reader forbidden",
			requestID: requestID.String(),
			body:      `{}`,
			actor:     testActor,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), testActor, requestID, gomock.Nil()).
					Return(model.BorrowRecord{}, errs.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
			expectedBody: `{"message":"forbidden"}`,
		},
		{
			name:         "err. bad requestId",
			requestID:    "not-a-uuid",
			body:         `{}`,
			actor:        testLibrarian,
			mockBehavior: func(r *service_mocks.MockBorrowService) {},
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestEcho(t)
			h := handler.New(svc, nil, nil, nil, []byte("secret"), zap.NewNop())
			e.POST("/borrow/requests/:requestId/approve", h.ApproveRequest, withActor(tt.actor))

			r := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/borrow/requests/%s/approve", tt.requestID), strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_ReturnBook(t *testing.T) {
	t.Parallel()
	recordID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	copyID := uuid.MustParse("f7cdc58f-2caf-4b15-9727-f89dcc629b27")
	borrowed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	returned := borrowed.Add(48 * time.Hour)

	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ReturnBook(gomock.Any(), testActor, recordID).
					Return(model.BorrowRecord{
						ID:           recordID,
						UserID:       testActor.UserID,
						BookID:       copyID,
						Status:       model.RecordReturned,
						BorrowedDate: borrowed,
						DueDate:      borrowed.Add(14 * 24 * time.Hour),
						ReturnDate:   &returned,
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","userId":"3e3ee1f3-0c63-4b4e-95d8-bbcbcc2b1b0a","bookId":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","status":"returned","borrowedDate":"2024-03-01T12:00:00Z","dueDate":"2024-03-15T12:00:00Z","returnDate":"2024-03-03T12:00:00Z","createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`,
		},
		{
			name: "err. someone else's record",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ReturnBook(gomock.Any(), testActor, recordID).
					Return(model.BorrowRecord{}, errs.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
			expectedBody: `{"message":"forbidden"}`,
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ReturnBook(gomock.Any(), testActor, recordID).
					Return(model.BorrowRecord{}, errors.New("db internal"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"db internal"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestEcho(t)
			h := handler.New(svc, nil, nil, nil, []byte("secret"), zap.NewNop())
			e.POST("/borrow/records/:recordId/return", h.ReturnBook, withActor(testActor))

			r := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/borrow/records/%s/return", recordID), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_MarkOverdue(t *testing.T) {
	t.Parallel()
	e, svc := newTestEcho(t)
	h := handler.New(svc, nil, nil, nil, []byte("secret"), zap.NewNop())
	e.POST("/borrow/overdue/sweep", h.MarkOverdue, withActor(testLibrarian))

	svc.EXPECT().
		MarkOverdue(gomock.Any(), testLibrarian).
		Return(int64(3), nil)

	r := httptest.NewRequest(http.MethodPost, "/borrow/overdue/sweep", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"markedOverdue":3}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_NoAuthContext(t *testing.T) {
	t.Parallel()
	e, svc := newTestEcho(t)
	h := handler.New(svc, nil, nil, nil, []byte("secret"), zap.NewNop())
	e.POST("/borrow/overdue/sweep", h.MarkOverdue)

	r := httptest.NewRequest(http.MethodPost, "/borrow/overdue/sweep", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
