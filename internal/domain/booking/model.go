package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// TimeSlot maps to the time_slot table. A slot belongs to a provider and
// is consumed by at most one active appointment.
type TimeSlot struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProviderID  uuid.UUID `db:"provider_id" json:"provider_id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	IsBlocked   bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Appointment maps to the appointment table. TotalPrice is snapshotted
// from the service at booking time and never changes afterwards.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	ServiceID       uuid.UUID `db:"service_id" json:"service_id"`
	TimeSlotID      uuid.UUID `db:"time_slot_id" json:"time_slot_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Status          string    `db:"status" json:"status"`
	TotalPrice      float64   `db:"total_price" json:"total_price"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CancelReason    *string   `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the appointment still holds its time slot.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanTransition reports whether a status transition is allowed.
// PENDING may become CONFIRMED or CANCELLED; CONFIRMED may become
// COMPLETED or CANCELLED. CANCELLED and COMPLETED are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Stats aggregates appointment counts for a user or provider.
type Stats struct {
	Total          int    `json:"total"`
	Pending        int    `json:"pending"`
	Confirmed      int    `json:"confirmed"`
	Completed      int    `json:"completed"`
	Cancelled      int    `json:"cancelled"`
	CompletionRate string `json:"completionRate"`
}

// NewStats builds a Stats with the completion rate formatted to two
// decimals. The rate is "0.00" when there are no appointments.
func NewStats(total, pending, confirmed, completed, cancelled int) *Stats {
	rate := "0.00"
	if total > 0 {
		rate = fmt.Sprintf("%.2f", float64(completed)/float64(total)*100)
	}
	return &Stats{
		Total:          total,
		Pending:        pending,
		Confirmed:      confirmed,
		Completed:      completed,
		Cancelled:      cancelled,
		CompletionRate: rate,
	}
}
