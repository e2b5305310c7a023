package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/auth"
	"github.com/Sunil4510/smart-appointment-booking-system/pkg/pagination"
)

// Handler exposes the catalog HTTP API.
type Handler struct {
	svc *CatalogService
}

func NewHandler(svc *CatalogService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires catalog endpoints. Browsing providers and services
// is public; managing them requires an authenticated provider.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.GET("/providers", h.listProviders)
	public.GET("/providers/:id", h.getProvider)
	public.GET("/providers/:id/services", h.listProviderServices)
	public.GET("/services", h.listServices)
	public.GET("/services/:id", h.getService)

	provider := api.Group("", auth.RequireRole(auth.RoleProvider))
	provider.POST("/providers", h.createProvider)
	provider.GET("/providers/me", h.myProvider)
	provider.PUT("/providers/me", h.updateProvider)
	provider.POST("/services", h.createService)
	provider.PUT("/services/:id", h.updateService)
	provider.DELETE("/services/:id", h.deactivateService)
}

func (h *Handler) createProvider(c echo.Context) error {
	var in CreateProviderInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.CreateProvider(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Provider profile created successfully",
		"provider": p,
	})
}

func (h *Handler) myProvider(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.ProviderByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) updateProvider(c echo.Context) error {
	var in UpdateProviderInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.UpdateProvider(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Provider profile updated successfully",
		"provider": p,
	})
}

func (h *Handler) getProvider(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}

	p, err := h.svc.GetProvider(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) listProviders(c echo.Context) error {
	pg := pagination.FromContext(c)
	providers, total, err := h.svc.ListProviders(c.Request().Context(), c.QueryParam("serviceType"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(providers, total, pg))
}

func (h *Handler) createService(c echo.Context) error {
	var in CreateServiceInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	svc, err := h.svc.CreateService(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Service created successfully",
		"service": svc,
	})
}

func (h *Handler) getService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}

	svc, err := h.svc.GetService(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) updateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}

	var in UpdateServiceInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	svc, err := h.svc.UpdateService(c.Request().Context(), userID, id, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Service updated successfully",
		"service": svc,
	})
}

func (h *Handler) deactivateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.DeactivateService(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Service deactivated successfully",
	})
}

func (h *Handler) listServices(c echo.Context) error {
	pg := pagination.FromContext(c)
	services, total, err := h.svc.ListServices(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(services, total, pg))
}

func (h *Handler) listProviderServices(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}

	services, err := h.svc.ListProviderServices(c.Request().Context(), id, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"services": services})
}
