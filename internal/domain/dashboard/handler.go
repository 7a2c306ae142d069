package dashboard

import (
	"fmt"
	"net/http"
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
	api.GET("/dashboard/stats", h.stats)
	api.GET("/dashboard/timeline", h.timeline)
	api.GET("/dashboard/timeline/export", h.exportTimeline)
}

func (h *Handler) stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) timeline(c echo.Context) error {
	entries, err := h.svc.Timeline(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if entries == nil {
		entries = []*TimelineEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) exportTimeline(c echo.Context) error {
	entries, err := h.svc.Timeline(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}

	rows := make([]export.TimelineRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, export.TimelineRow{
			PatientName: e.PatientName,
			Leito:       e.Leito,
			Drug:        e.Name,
			Dose:        e.Dose,
			Route:       e.Route,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			CurrentDay:  e.CurrentDay,
			Status:      e.Status,
		})
	}

	filename := fmt.Sprintf("atb-timeline-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteTimelineXLSX(c.Response(), rows)
}
