package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SlotRepository defines time slot persistence operations.
type SlotRepository interface {
	// CreateBatch inserts slots, silently skipping ones that collide with
	// an existing (provider, start, end) tuple. It returns the slots that
	// were actually created.
	CreateBatch(ctx context.Context, slots []*TimeSlot) ([]*TimeSlot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	// GetForUpdate loads a slot with a row lock. Must run inside a
	// transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	// ExistingStarts returns the Unix start times of a provider's slots
	// within [from, to).
	ExistingStarts(ctx context.Context, providerID uuid.UUID, from, to time.Time) (map[int64]bool, error)
	// FindAvailable returns a provider's open slots within [from, to),
	// excluding blocked slots and slots held by an active appointment,
	// ordered by start time.
	FindAvailable(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*TimeSlot, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	// SetBlocked toggles the blocked flag and mirrors availability.
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*TimeSlot, error)
	HasActiveAppointment(ctx context.Context, slotID uuid.UUID) (bool, error)
}

// AppointmentRepository defines appointment persistence operations.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// ExistsActiveBySlot reports whether the slot is held by a PENDING or
	// CONFIRMED appointment other than excludeID (pass uuid.Nil to check
	// all).
	ExistsActiveBySlot(ctx context.Context, slotID, excludeID uuid.UUID) (bool, error)
	// ExistsActiveByService reports whether any PENDING or CONFIRMED
	// appointment references the service.
	ExistsActiveByService(ctx context.Context, serviceID uuid.UUID) (bool, error)
	// ListByUser returns a user's appointments, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	// ListByProvider returns appointments for a provider's services in
	// chronological order.
	ListByProvider(ctx context.Context, providerID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	StatsByUser(ctx context.Context, userID uuid.UUID) (*Stats, error)
	StatsByProvider(ctx context.Context, providerID uuid.UUID) (*Stats, error)
	// CompleteElapsed marks CONFIRMED appointments whose slot has ended
	// as COMPLETED and returns how many rows changed.
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}
