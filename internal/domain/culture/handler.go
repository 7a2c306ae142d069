package culture

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
	api.GET("/cultures/pending", h.listPending)
	api.GET("/cultures/:id", h.get)
	api.POST("/cultures", h.create)
	api.PATCH("/cultures/:id", h.update)
	api.POST("/cultures/:id/result", h.setResult)
	api.GET("/patients/:patientId/cultures", h.listByPatient)
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
		list = []*Culture{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) listPending(c echo.Context) error {
	list, err := h.svc.ListPending(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if list == nil {
		list = []*PendingCulture{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	cul, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cul)
}

func (h *Handler) create(c echo.Context) error {
	var cul Culture
	if err := c.Bind(&cul); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	if err := h.svc.Create(c.Request().Context(), &cul); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, cul)
}

func (h *Handler) update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	var upd Culture
	if err := c.Bind(&upd); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	cul, err := h.svc.Update(c.Request().Context(), id, &upd)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cul)
}

func (h *Handler) setResult(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	var in ResultInput
	if err := c.Bind(&in); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	cul, err := h.svc.SetResult(c.Request().Context(), id, in, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cul)
}
