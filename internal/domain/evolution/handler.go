package evolution

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/export"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/evolutions/:id", h.get)
	api.POST("/evolutions", h.create)
	api.POST("/evolutions/generate", h.generate)
	api.POST("/evolutions/:id/export", h.export)
	api.GET("/patients/:patientId/evolutions", h.listByPatient)
	api.GET("/patients/:patientId/evolutions/latest", h.latest)
	api.GET("/patients/:patientId/context", h.context)
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
		list = []*Evolution{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) latest(c echo.Context) error {
	patientID, err := strconv.Atoi(c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("patientId", "patientId must be an integer"))
	}
	e, err := h.svc.Latest(c.Request().Context(), patientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if e == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, e)
}

// context exposes the deterministic patient-state block, mostly for
// inspection and debugging of what the generator sees.
func (h *Handler) context(c echo.Context) error {
	patientID, err := strconv.Atoi(c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("patientId", "patientId must be an integer"))
	}
	text, err := h.svc.BuildContext(c.Request().Context(), patientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"context": text})
}

func (h *Handler) get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	e, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) create(c echo.Context) error {
	var e Evolution
	if err := c.Bind(&e); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	if err := h.svc.Create(c.Request().Context(), &e); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	resp, err := h.svc.Generate(c.Request().Context(), req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) export(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("id", "id must be an integer"))
	}
	e, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	p, err := h.svc.patients.GetPatient(c.Request().Context(), e.PatientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}

	filename := fmt.Sprintf("evolucao-%s-%s.html",
		strings.ReplaceAll(p.Name, " ", "_"), time.Now().Format("2006-01-02"))
	doc := export.RenderNoteHTML("Evolução - "+p.Name, e.Content)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, "text/html; charset=utf-8", doc)
}
