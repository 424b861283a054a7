package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookstore-service/bookstore/internal/model"
)

func (h *Handler) SearchTitles(c echo.Context) error {
	page, size, err := paging(c)
	if err != nil {
		return err
	}

	filter := model.TitleSearchFilter{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
		Page:   page,
		Size:   size,
	}
	if categoryParam := c.QueryParam("categoryId"); categoryParam != "" {
		if filter.CategoryID, err = uuid.Parse(categoryParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("categoryId is invalid"))
		}
	}
	if availableParam := c.QueryParam("available"); availableParam != "" {
		available, err := strconv.ParseBool(availableParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("available is invalid"))
		}
		filter.Available = &available
	}

	titles, err := h.inventorySvc.Search(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, titles)
}

func (h *Handler) GetTitle(c echo.Context) error {
	titleID, err := uuid.Parse(c.Param("titleId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("titleId is invalid"))
	}

	title, err := h.inventorySvc.GetTitle(c.Request().Context(), titleID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, title)
}

func (h *Handler) GetCopies(c echo.Context) error {
	titleID, err := uuid.Parse(c.Param("titleId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("titleId is invalid"))
	}

	var onlyAvailable bool
	if availableParam := c.QueryParam("available"); availableParam != "" {
		if onlyAvailable, err = strconv.ParseBool(availableParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("available is invalid"))
		}
	}

	copies, err := h.inventorySvc.ListCopies(c.Request().Context(), titleID, onlyAvailable)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, copies)
}
