package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
	"github.com/bookstore-service/bookstore/pkg/auth"
	md "github.com/bookstore-service/bookstore/pkg/middleware"
	"github.com/bookstore-service/bookstore/pkg/validate"
)

type Handler struct {
	borrowSvc       BorrowService
	inventorySvc    InventoryService
	authSvc         AuthService
	notificationSvc NotificationService
	jwtSecret       []byte
	log             *zap.Logger
}

func New(borrowSvc BorrowService, inventorySvc InventoryService, authSvc AuthService, notificationSvc NotificationService, jwtSecret []byte, log *zap.Logger) *Handler {
	return &Handler{
		borrowSvc:       borrowSvc,
		inventorySvc:    inventorySvc,
		authSvc:         authSvc,
		notificationSvc: notificationSvc,
		jwtSecret:       jwtSecret,
		log:             log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", md.JwtAuthentication(h.jwtSecret))

	authed.GET("/titles", h.SearchTitles)
	authed.GET("/titles/:titleId", h.GetTitle)
	authed.GET("/titles/:titleId/copies", h.GetCopies)

	authed.POST("/borrow/requests", h.RequestBorrow)
	authed.GET("/borrow/requests", h.ListPendingRequests)
	authed.POST("/borrow/requests/:requestId/approve", h.ApproveRequest)
	authed.POST("/borrow/requests/:requestId/reject", h.RejectRequest)
	authed.POST("/borrow/records/:recordId/return", h.ReturnBook)
	authed.POST("/borrow/records/:recordId/lost", h.MarkLost)
	authed.POST("/borrow/overdue/sweep", h.MarkOverdue)
	authed.GET("/borrow/records", h.History)

	authed.GET("/notifications", h.ListNotifications)
	authed.POST("/notifications/:notificationId/read", h.MarkNotificationRead)
	authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func actorFromContext(c echo.Context) (model.Actor, error) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return model.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "no auth context")
	}
	return actor, nil
}

// httpError maps the business error kinds onto status codes. Anything outside
// the taxonomy is an infrastructure failure.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrInvalidState):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
