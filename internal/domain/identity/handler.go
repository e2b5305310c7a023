package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/auth"
)

// Handler exposes the authentication HTTP API.
type Handler struct {
	svc *AuthService
}

func NewHandler(svc *AuthService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires auth endpoints. Registration and login are public;
// the profile endpoint requires a token.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/register", h.register)
	public.POST("/auth/login", h.login)
	api.GET("/auth/me", h.me)
}

func (h *Handler) register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, token, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    u,
		"token":   token,
	})
}

func (h *Handler) login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, token, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    u,
		"token":   token,
	})
}

func (h *Handler) me(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
