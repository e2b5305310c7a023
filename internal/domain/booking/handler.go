package booking

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/auth"
	"github.com/Sunil4510/smart-appointment-booking-system/pkg/pagination"
)

// Handler exposes the booking HTTP API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires booking endpoints. Slot browsing is public; all
// appointment operations require a token, and slot management requires
// the PROVIDER role.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.GET("/services/:id/slots", h.availableSlots)
	public.GET("/providers/:id/slots", h.providerSlots)

	api.POST("/appointments", h.create)
	api.GET("/appointments", h.listMine)
	api.GET("/appointments/stats", h.stats)
	api.GET("/appointments/:id", h.get)
	api.PUT("/appointments/:id", h.update)
	api.POST("/appointments/:id/cancel", h.cancel)

	provider := api.Group("", auth.RequireRole(auth.RoleProvider))
	provider.POST("/slots", h.generateSlots)
	provider.PATCH("/slots/:id/block", h.toggleSlot)
	provider.GET("/provider/appointments", h.listForProvider)
	provider.POST("/appointments/:id/confirm", h.confirm)
}

func (h *Handler) availableSlots(c echo.Context) error {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), serviceID, c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"slots": slots})
}

func (h *Handler) providerSlots(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}

	slots, err := h.svc.ProviderAvailableSlots(c.Request().Context(), providerID, c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"slots": slots})
}

func (h *Handler) generateSlots(c echo.Context) error {
	var in GenerateSlotsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	slots, err := h.svc.GenerateSlots(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Time slots created successfully",
		"slots":   slots,
	})
}

func (h *Handler) toggleSlot(c echo.Context) error {
	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	var in struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	slot, err := h.svc.ToggleSlot(c.Request().Context(), userID, slotID, in.Blocked)
	if err != nil {
		return err
	}

	msg := "Time slot unblocked successfully"
	if in.Blocked {
		msg = "Time slot blocked successfully"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": msg,
		"slot":    slot,
	})
}

func (h *Handler) create(c echo.Context) error {
	var in CreateAppointmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.CreateAppointment(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "Appointment booked successfully",
		"appointment": appt,
	})
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.GetAppointment(c.Request().Context(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) listMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())

	appts, total, err := h.svc.ListUserAppointments(c.Request().Context(), userID, c.QueryParam("status"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg))
}

func (h *Handler) listForProvider(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())

	appts, total, err := h.svc.ListProviderAppointments(c.Request().Context(), userID, c.QueryParam("status"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg))
}

func (h *Handler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var in UpdateAppointmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.UpdateAppointment(c.Request().Context(), id, userID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Appointment updated successfully",
		"appointment": appt,
	})
}

func (h *Handler) cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var in struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.CancelAppointment(c.Request().Context(), id, userID, in.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Appointment cancelled successfully",
		"appointment": appt,
	})
}

func (h *Handler) confirm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.ConfirmAppointment(c.Request().Context(), id, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Appointment confirmed successfully",
		"appointment": appt,
	})
}

func (h *Handler) stats(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	asProvider := c.QueryParam("scope") == "provider"

	stats, err := h.svc.AppointmentStats(c.Request().Context(), userID, asProvider)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
