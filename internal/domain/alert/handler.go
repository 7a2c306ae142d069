package alert

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/alerts", h.list)
	api.GET("/alerts/unread", h.listUnread)
	api.POST("/alerts", h.create)
	api.POST("/alerts/:id/read", h.markRead)
	api.POST("/alerts/:id/resolve", h.resolve)
	api.GET("/patients/:patientId/alerts", h.listByPatient)
}

func (h *Handler) list(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	alerts, err := h.svc.List(c.Request().Context(), limit)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *Handler) listUnread(c echo.Context) error {
	alerts, err := h.svc.ListUnread(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *Handler) listByPatient(c echo.Context) error {
	patientID, err := strconv.Atoi(c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("patientId", "patientId must be an integer"))
	}
	alerts, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *Handler) create(c echo.Context) error {
	var a Alert
	if err := c.Bind(&a); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) markRead(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	a, err := h.svc.MarkRead(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) resolve(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	a, err := h.svc.Resolve(c.Request().Context(), id, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
