package user

import (
	"net/http"

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

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/login", h.login)
	g.POST("/auth/register", h.register)
}

// RegisterRoutes mounts the endpoints that require authentication.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/auth/me", h.me)
	api.POST("/auth/logout", h.logout)
}

func (h *Handler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	u, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) me(c echo.Context) error {
	ctx := c.Request().Context()
	id := auth.UserIDFromContext(ctx)
	if id == 0 {
		return apperr.ToHTTP(apperr.Unauthorized("not authenticated"))
	}
	u, err := h.svc.GetByID(ctx, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) logout(c echo.Context) error {
	ctx := c.Request().Context()
	h.svc.Logout(ctx, auth.UserIDFromContext(ctx), auth.UsernameFromContext(ctx))
	return c.NoContent(http.StatusNoContent)
}
