package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/domain/catalog"
	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/db"
	"github.com/Sunil4510/smart-appointment-booking-system/pkg/apperr"
)

// TxRunner runs fn atomically. Repositories called with the context fn
// receives join the same transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// ServiceCatalog is the slice of the catalog the booking flow needs.
type ServiceCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error)
}

// ProviderCatalog is the slice of the provider directory the booking
// flow needs.
type ProviderCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Provider, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*catalog.Provider, error)
}

// GenerateSlotsInput describes a batch of slots to create for one day.
type GenerateSlotsInput struct {
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	SlotDuration int    `json:"slotDuration"`
}

// CreateAppointmentInput carries a booking request.
type CreateAppointmentInput struct {
	ServiceID       uuid.UUID `json:"serviceId"`
	TimeSlotID      uuid.UUID `json:"timeSlotId"`
	AppointmentDate string    `json:"appointmentDate"`
	Notes           *string   `json:"notes"`
}

// UpdateAppointmentInput carries a reschedule or notes change. To
// reschedule, both TimeSlotID and AppointmentDate must be set.
type UpdateAppointmentInput struct {
	TimeSlotID      *uuid.UUID `json:"timeSlotId"`
	AppointmentDate *string    `json:"appointmentDate"`
	Notes           *string    `json:"notes"`
}

// Service orchestrates slot inventory and the appointment lifecycle.
// The clock is injectable so temporal policy boundaries can be tested.
type Service struct {
	slots     SlotRepository
	appts     AppointmentRepository
	services  ServiceCatalog
	providers ProviderCatalog
	runTx     TxRunner
	now       func() time.Time
}

func NewService(slots SlotRepository, appts AppointmentRepository, services ServiceCatalog, providers ProviderCatalog, runTx TxRunner) *Service {
	return &Service{
		slots:     slots,
		appts:     appts,
		services:  services,
		providers: providers,
		runTx:     runTx,
		now:       time.Now,
	}
}

// GenerateSlots creates uniform slots for one day of the caller's
// provider schedule. Slots that already exist are skipped.
func (s *Service) GenerateSlots(ctx context.Context, userID uuid.UUID, in GenerateSlotsInput) ([]*TimeSlot, error) {
	provider, err := s.providerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	day, err := ParseDay(in.Date)
	if err != nil {
		return nil, err
	}
	if day.Before(Today(s.now())) {
		return nil, apperr.Validation("Cannot create slots for past dates")
	}

	startOffset, err := ParseClock(in.StartTime)
	if err != nil {
		return nil, err
	}
	endOffset, err := ParseClock(in.EndTime)
	if err != nil {
		return nil, err
	}

	start := day.Add(startOffset)
	end := day.Add(endOffset)
	if !start.Before(end) {
		return nil, apperr.Validation("Start time must be before end time")
	}

	minutes := in.SlotDuration
	if minutes <= 0 {
		minutes = DefaultSlotMinutes
	}
	dur := time.Duration(minutes) * time.Minute

	existing, err := s.slots.ExistingStarts(ctx, provider.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	var slots []*TimeSlot
	for t := start; !t.Add(dur).After(end); t = t.Add(dur) {
		if existing[t.Unix()] {
			continue
		}
		slots = append(slots, &TimeSlot{
			ProviderID:  provider.ID,
			StartTime:   t,
			EndTime:     t.Add(dur),
			IsAvailable: true,
		})
	}
	if len(slots) == 0 {
		return nil, apperr.Validation("No new time slots to create (slots may already exist)")
	}

	return s.slots.CreateBatch(ctx, slots)
}

// AvailableSlots returns a service's bookable slots for one day,
// filtered by the lead time and booking horizon rules.
func (s *Service) AvailableSlots(ctx context.Context, serviceID uuid.UUID, date string) ([]*TimeSlot, error) {
	svc, err := s.serviceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, apperr.Validation("Service is not currently active")
	}

	day, err := ParseDay(date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !WithinHorizon(day, now) {
		return nil, apperr.Validation("Cannot book appointments more than 90 days in advance")
	}

	slots, err := s.slots.FindAvailable(ctx, svc.ProviderID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	bookable := make([]*TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if CanBook(slot.StartTime, now) {
			bookable = append(bookable, slot)
		}
	}
	return bookable, nil
}

// ProviderAvailableSlots returns a provider's open slots for one day,
// for schedule browsing. Only future slots are returned.
func (s *Service) ProviderAvailableSlots(ctx context.Context, providerID uuid.UUID, date string) ([]*TimeSlot, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Provider not found")
	}
	if err != nil {
		return nil, err
	}
	if !provider.IsActive {
		return nil, apperr.Validation("Provider is not currently active")
	}

	day, err := ParseDay(date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if day.Before(Today(now)) {
		return nil, apperr.Validation("Cannot view slots for past dates")
	}

	slots, err := s.slots.FindAvailable(ctx, provider.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	upcoming := make([]*TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.StartTime.After(now) {
			upcoming = append(upcoming, slot)
		}
	}
	return upcoming, nil
}

// ToggleSlot blocks or unblocks one of the caller's slots. A slot with
// an active appointment cannot be blocked.
func (s *Service) ToggleSlot(ctx context.Context, userID, slotID uuid.UUID, blocked bool) (*TimeSlot, error) {
	provider, err := s.providerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	slot, err := s.slotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.ProviderID != provider.ID {
		return nil, apperr.Forbidden("You can only modify your own time slots")
	}

	if blocked {
		held, err := s.slots.HasActiveAppointment(ctx, slotID)
		if err != nil {
			return nil, err
		}
		if held {
			return nil, apperr.Validation("Cannot block a time slot that has existing appointments")
		}
	}

	return s.slots.SetBlocked(ctx, slotID, blocked)
}

// CreateAppointment books a slot. Policy checks run upfront; the slot is
// then claimed under a row lock so two concurrent bookings of the same
// slot cannot both succeed. The unique index on active appointments per
// slot is the final arbiter.
func (s *Service) CreateAppointment(ctx context.Context, userID uuid.UUID, in CreateAppointmentInput) (*Appointment, error) {
	day, err := ParseDay(in.AppointmentDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if day.Before(Today(now)) {
		return nil, apperr.Validation("Cannot book appointments in the past")
	}
	if !WithinHorizon(day, now) {
		return nil, apperr.Validation("Cannot book appointments more than 90 days in advance")
	}

	svc, err := s.serviceByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, apperr.Validation("Service is not currently active")
	}

	provider, err := s.providers.GetByID(ctx, svc.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.IsActive {
		return nil, apperr.Validation("Provider is not currently available")
	}

	slot, err := s.slotByID(ctx, in.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if slot.ProviderID != svc.ProviderID {
		return nil, apperr.NotFound("Time slot not found for this service")
	}
	if !slot.IsAvailable || slot.IsBlocked {
		return nil, apperr.Conflict("Time slot is not available")
	}
	if !CanBook(slot.StartTime, now) {
		return nil, apperr.Validation("Cannot book appointments less than 1 hour in advance")
	}

	appt := &Appointment{
		UserID:          userID,
		ServiceID:       svc.ID,
		TimeSlotID:      slot.ID,
		AppointmentDate: day,
		Status:          StatusPending,
		TotalPrice:      svc.Price,
		Notes:           in.Notes,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		locked, err := s.slots.GetForUpdate(ctx, slot.ID)
		if err != nil {
			return err
		}
		if !locked.IsAvailable || locked.IsBlocked {
			return apperr.Conflict("Time slot is not available")
		}

		held, err := s.appts.ExistsActiveBySlot(ctx, slot.ID, uuid.Nil)
		if err != nil {
			return err
		}
		if held {
			return apperr.Conflict("Time slot is not available")
		}

		if err := s.appts.Create(ctx, appt); err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("Time slot is not available")
			}
			return err
		}
		return s.slots.SetAvailability(ctx, slot.ID, false)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// GetAppointment returns an appointment visible to the caller: its
// owner or the provider it is booked with.
func (s *Service) GetAppointment(ctx context.Context, id, userID uuid.UUID) (*Appointment, error) {
	appt, err := s.appointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.UserID == userID {
		return appt, nil
	}

	svc, err := s.serviceByID(ctx, appt.ServiceID)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.GetByID(ctx, svc.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to view this appointment")
	}
	return appt, nil
}

// ListUserAppointments returns the caller's appointments, newest first.
func (s *Service) ListUserAppointments(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	if err := validateStatusFilter(status); err != nil {
		return nil, 0, err
	}
	return s.appts.ListByUser(ctx, userID, status, limit, offset)
}

// ListProviderAppointments returns appointments booked with the
// caller's provider profile, in chronological order.
func (s *Service) ListProviderAppointments(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	provider, err := s.providerByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if err := validateStatusFilter(status); err != nil {
		return nil, 0, err
	}
	return s.appts.ListByProvider(ctx, provider.ID, status, limit, offset)
}

// UpdateAppointment reschedules an appointment to a new slot and/or
// updates its notes. Rescheduling keeps the current status, releases the
// old slot, and claims the new one atomically.
func (s *Service) UpdateAppointment(ctx context.Context, id, userID uuid.UUID, in UpdateAppointmentInput) (*Appointment, error) {
	appt, err := s.appointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to update this appointment")
	}
	if !appt.IsActive() {
		return nil, apperr.Validation("Only pending or confirmed appointments can be updated")
	}

	if in.Notes != nil {
		appt.Notes = in.Notes
	}

	// Notes-only update.
	if in.TimeSlotID == nil && in.AppointmentDate == nil {
		if in.Notes == nil {
			return nil, apperr.Validation("Nothing to update")
		}
		if err := s.appts.Update(ctx, appt); err != nil {
			return nil, err
		}
		return appt, nil
	}

	if in.TimeSlotID == nil || in.AppointmentDate == nil {
		return nil, apperr.Validation("Both timeSlotId and appointmentDate are required to reschedule")
	}

	day, err := ParseDay(*in.AppointmentDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if day.Before(Today(now)) {
		return nil, apperr.Validation("Cannot book appointments in the past")
	}

	svc, err := s.serviceByID(ctx, appt.ServiceID)
	if err != nil {
		return nil, err
	}

	newSlot, err := s.slotByID(ctx, *in.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if newSlot.ProviderID != svc.ProviderID {
		return nil, apperr.NotFound("Time slot not found for this service")
	}
	if !CanBook(newSlot.StartTime, now) {
		return nil, apperr.Validation("Cannot book appointments less than 1 hour in advance")
	}

	oldSlotID := appt.TimeSlotID

	err = s.runTx(ctx, func(ctx context.Context) error {
		locked, err := s.slots.GetForUpdate(ctx, newSlot.ID)
		if err != nil {
			return err
		}
		if locked.IsBlocked {
			return apperr.Conflict("Time slot is not available")
		}
		if locked.ID != oldSlotID && !locked.IsAvailable {
			return apperr.Conflict("Time slot is not available")
		}

		held, err := s.appts.ExistsActiveBySlot(ctx, newSlot.ID, appt.ID)
		if err != nil {
			return err
		}
		if held {
			return apperr.Conflict("Time slot is not available")
		}

		appt.TimeSlotID = newSlot.ID
		appt.AppointmentDate = day
		if err := s.appts.Update(ctx, appt); err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("Time slot is not available")
			}
			return err
		}

		if oldSlotID != newSlot.ID {
			if err := s.slots.SetAvailability(ctx, oldSlotID, true); err != nil {
				return err
			}
		}
		return s.slots.SetAvailability(ctx, newSlot.ID, false)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// CancelAppointment cancels an active appointment and releases its slot.
// The cutoff rule applies regardless of current status.
func (s *Service) CancelAppointment(ctx context.Context, id, userID uuid.UUID, reason string) (*Appointment, error) {
	appt, err := s.appointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to cancel this appointment")
	}
	if !appt.IsActive() {
		return nil, apperr.Validation("Only pending or confirmed appointments can be cancelled")
	}

	slot, err := s.slotByID(ctx, appt.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if !CanCancel(slot.StartTime, s.now()) {
		return nil, apperr.Validation("Appointments can only be cancelled at least 24 hours in advance")
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		appt.Status = StatusCancelled
		if reason = strings.TrimSpace(reason); reason != "" {
			appt.CancelReason = &reason
		}
		if err := s.appts.Update(ctx, appt); err != nil {
			return err
		}
		return s.slots.SetAvailability(ctx, slot.ID, true)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// ConfirmAppointment moves a pending appointment to CONFIRMED. Only the
// provider the appointment is booked with may confirm it.
func (s *Service) ConfirmAppointment(ctx context.Context, id, userID uuid.UUID) (*Appointment, error) {
	appt, err := s.appointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	svc, err := s.serviceByID(ctx, appt.ServiceID)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.GetByID(ctx, svc.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to confirm this appointment")
	}

	if !CanTransition(appt.Status, StatusConfirmed) {
		return nil, apperr.Validation("Only pending appointments can be confirmed")
	}

	appt.Status = StatusConfirmed
	if err := s.appts.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// AppointmentStats returns aggregate counts for the caller, or for the
// caller's provider profile when asProvider is set.
func (s *Service) AppointmentStats(ctx context.Context, userID uuid.UUID, asProvider bool) (*Stats, error) {
	if asProvider {
		provider, err := s.providerByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.appts.StatsByProvider(ctx, provider.ID)
	}
	return s.appts.StatsByUser(ctx, userID)
}

// CompleteElapsed finalizes confirmed appointments whose slot has ended.
func (s *Service) CompleteElapsed(ctx context.Context) (int64, error) {
	return s.appts.CompleteElapsed(ctx, s.now())
}

func (s *Service) providerByUser(ctx context.Context, userID uuid.UUID) (*catalog.Provider, error) {
	provider, err := s.providers.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Provider profile not found")
	}
	return provider, err
}

func (s *Service) serviceByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Service not found")
	}
	return svc, err
}

func (s *Service) slotByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Time slot not found")
	}
	return slot, err
}

func (s *Service) appointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Appointment not found")
	}
	return appt, err
}

func validateStatusFilter(status string) error {
	switch status {
	case "", StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return nil
	default:
		return apperr.Validation("Invalid status filter")
	}
}
