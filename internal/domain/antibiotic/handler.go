package antibiotic

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
	api.GET("/antibiotics/active", h.listActive)
	api.GET("/antibiotics/:id", h.get)
	api.POST("/antibiotics", h.create)
	api.PATCH("/antibiotics/:id", h.update)
	api.POST("/antibiotics/:id/stop", h.stop)
	api.GET("/patients/:patientId/antibiotics", h.listByPatient)
}

func (h *Handler) listByPatient(c echo.Context) error {
	patientID, err := strconv.Atoi(c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("patientId", "patientId must be an integer"))
	}
	list, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if list == nil {
		list = []*Antibiotic{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) listActive(c echo.Context) error {
	list, err := h.svc.ListActive(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if list == nil {
		list = []*ActiveCourse{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	a, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) create(c echo.Context) error {
	var a Antibiotic
	if err := c.Bind(&a); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	var upd Antibiotic
	if err := c.Bind(&upd); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	a, err := h.svc.Update(c.Request().Context(), id, &upd)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) stop(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	a, err := h.svc.Stop(c.Request().Context(), id, body.Reason, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
