package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookstore-service/bookstore/internal/model"
)

func (h *Handler) RequestBorrow(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	type Req struct {
		CopyID uuid.UUID `json:"copyId" validate:"required"`
	}
	var req Req
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	request, err := h.borrowSvc.RequestBorrow(c.Request().Context(), actor, req.CopyID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, request)
}

func (h *Handler) ApproveRequest(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("requestId is invalid"))
	}

	type Req struct {
		DueDate *time.Time `json:"dueDate"`
	}
	var req Req
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.borrowSvc.ApproveRequest(c.Request().Context(), actor, requestID, req.DueDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) RejectRequest(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("requestId is invalid"))
	}

	req, err := h.borrowSvc.RejectRequest(c.Request().Context(), actor, requestID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) ReturnBook(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	recordID, err := uuid.Parse(c.Param("recordId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("recordId is invalid"))
	}

	rec, err := h.borrowSvc.ReturnBook(c.Request().Context(), actor, recordID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) MarkLost(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	recordID, err := uuid.Parse(c.Param("recordId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("recordId is invalid"))
	}

	rec, err := h.borrowSvc.MarkLost(c.Request().Context(), actor, recordID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) MarkOverdue(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	n, err := h.borrowSvc.MarkOverdue(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"markedOverdue": n})
}

func (h *Handler) ListPendingRequests(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	page, size, err := paging(c)
	if err != nil {
		return err
	}

	reqs, err := h.borrowSvc.ListPendingRequests(c.Request().Context(), actor, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *Handler) History(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	page, size, err := paging(c)
	if err != nil {
		return err
	}

	userID := actor.UserID
	if userParam := c.QueryParam("userId"); userParam != "" {
		if userID, err = uuid.Parse(userParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("userId is invalid"))
		}
	}

	var statuses []model.RecordStatus
	for _, s := range c.QueryParams()["status"] {
		statuses = append(statuses, model.RecordStatus(s))
	}

	records, err := h.borrowSvc.History(c.Request().Context(), actor, userID, statuses, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func paging(c echo.Context) (page, size int, err error) {
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("page is invalid"))
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("size is invalid"))
		}
	}
	return page, size, nil
}
