package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
)

func (h *Handler) Register(c echo.Context) error {
	type Req struct {
		Email    string     `json:"email" validate:"required,email"`
		Password string     `json:"password" validate:"required,min=8"`
		Role     model.Role `json:"role" validate:"omitempty,oneof=admin librarian reader"`
	}
	var req Req
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.authSvc.Register(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c echo.Context) error {
	type Req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	var req Req
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	token, err := h.authSvc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"accessToken": token})
}

func (h *Handler) ListNotifications(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	page, size, err := paging(c)
	if err != nil {
		return err
	}

	var unreadOnly bool
	if unreadParam := c.QueryParam("unread"); unreadParam != "" {
		if unreadOnly, err = strconv.ParseBool(unreadParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("unread is invalid"))
		}
	}

	items, err := h.notificationSvc.List(c.Request().Context(), actor.UserID, unreadOnly, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	notificationID, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("notificationId is invalid"))
	}

	n, err := h.notificationSvc.MarkRead(c.Request().Context(), actor.UserID, notificationID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	n, err := h.notificationSvc.MarkAllRead(c.Request().Context(), actor.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"read": n})
}
