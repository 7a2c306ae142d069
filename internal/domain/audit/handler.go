package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/auth"
	"github.com/hemato/consult/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the audit trail endpoints. Reading the trail is
// restricted to preceptors and admins.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/audit", auth.RequireRole("preceptor"))
	g.GET("/logs", h.list)
	g.GET("/patients/:patientId", h.listByPatient)
	g.GET("/users/:userId", h.listByUser)
}

func (h *Handler) list(c echo.Context) error {
	p := pagination.FromContext(c)
	logs, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if logs == nil {
		logs = []*Log{}
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) listByPatient(c echo.Context) error {
	patientID, err := strconv.Atoi(c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("patientId", "patientId must be an integer"))
	}
	logs, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if logs == nil {
		logs = []*Log{}
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) listByUser(c echo.Context) error {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("userId", "userId must be an integer"))
	}
	logs, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if logs == nil {
		logs = []*Log{}
	}
	return c.JSON(http.StatusOK, logs)
}
