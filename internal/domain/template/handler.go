package template

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hemato/consult/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/templates", h.list)
	api.GET("/templates/:id", h.get)
	api.POST("/templates", h.create)
	api.PATCH("/templates/:id", h.update)
	api.DELETE("/templates/:id", h.delete)
}

func (h *Handler) list(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if list == nil {
		list = []*Template{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	t, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) create(c echo.Context) error {
	var t Template
	if err := c.Bind(&t); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	if err := h.svc.Create(c.Request().Context(), &t); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	var upd Template
	if err := c.Bind(&upd); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	t, err := h.svc.Update(c.Request().Context(), id, &upd)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
