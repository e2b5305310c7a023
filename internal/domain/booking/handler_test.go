package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/auth"
	"github.com/Sunil4510/smart-appointment-booking-system/pkg/apperr"
)

func newTestServer(f *fixture) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.EchoErrorHandler(zerolog.Nop())

	api := e.Group("/api/v1")
	NewHandler(f.svc).RegisterRoutes(api, api)
	return e
}

func authedRequest(method, target string, body string, userID uuid.UUID, role string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestHandlerCreateAppointment(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)
	slot := f.addSlot(clock.Add(48 * time.Hour))

	body := fmt.Sprintf(`{"serviceId":%q,"timeSlotId":%q,"appointmentDate":%q}`,
		f.catSvc.ID, slot.ID, dayOf(slot.StartTime))
	req := authedRequest(http.MethodPost, "/api/v1/appointments", body, uuid.New(), auth.RoleUser)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message     string       `json:"message"`
		Appointment *Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Message != "Appointment booked successfully" {
		t.Errorf("unexpected message: %s", resp.Message)
	}
	if resp.Appointment == nil || resp.Appointment.Status != StatusPending {
		t.Errorf("expected pending appointment in response, got %+v", resp.Appointment)
	}
}

func TestHandlerCreateAppointment_Conflict(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)
	slot := f.addSlot(clock.Add(48 * time.Hour))

	body := fmt.Sprintf(`{"serviceId":%q,"timeSlotId":%q,"appointmentDate":%q}`,
		f.catSvc.ID, slot.ID, dayOf(slot.StartTime))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/appointments", body, uuid.New(), auth.RoleUser))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/appointments", body, uuid.New(), auth.RoleUser))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp apperr.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Message != "Time slot is not available" {
		t.Errorf("unexpected message: %s", resp.Message)
	}
}

func TestHandlerGetAppointment_NotFound(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)

	req := authedRequest(http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), "", uuid.New(), auth.RoleUser)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerGetAppointment_BadID(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)

	req := authedRequest(http.MethodGet, "/api/v1/appointments/not-a-uuid", "", uuid.New(), auth.RoleUser)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerGenerateSlots_RequiresProviderRole(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)

	body := `{"date":"2025-06-16","startTime":"09:00","endTime":"12:00"}`
	req := authedRequest(http.MethodPost, "/api/v1/slots", body, uuid.New(), auth.RoleUser)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER role, got %d", rec.Code)
	}
}

func TestHandlerListAppointments_Paginated(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		slot := f.addSlot(clock.Add(time.Duration(48+i) * time.Hour))
		a := &Appointment{
			ID: uuid.New(), UserID: userID, ServiceID: f.catSvc.ID, TimeSlotID: slot.ID,
			AppointmentDate: Today(slot.StartTime), Status: StatusPending, TotalPrice: 50,
		}
		f.st.appts[a.ID] = a
	}

	req := authedRequest(http.MethodGet, "/api/v1/appointments?page=1&limit=2", "", userID, auth.RoleUser)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 3 || resp.Page != 1 || resp.Limit != 2 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestHandlerAvailableSlots(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)
	f.addSlot(clock.Add(3 * time.Hour))

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/services/"+f.catSvc.ID.String()+"/slots?date="+dayOf(clock), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Slots []*TimeSlot `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Slots) != 1 {
		t.Errorf("expected 1 slot, got %d", len(resp.Slots))
	}
}
