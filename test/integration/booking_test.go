package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/domain/booking"
	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/db"
	"github.com/Sunil4510/smart-appointment-booking-system/pkg/apperr"
)

// Concurrent bookings race for the same slot through the locking read
// and the partial unique index. Exactly one caller may win.
func TestCreateAppointment_ConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	pool := globalDB.Pool

	providerUser := createTestUser(t, ctx, pool, "PROVIDER")
	provider := createTestProvider(t, ctx, pool, providerUser.ID)
	service := createTestService(t, ctx, pool, provider.ID)
	slot := createTestSlot(t, ctx, pool, provider.ID, time.Now().UTC().Add(48*time.Hour).Truncate(time.Hour))

	const contenders = 8
	users := make([]uuid.UUID, contenders)
	for i := range users {
		users[i] = createTestUser(t, ctx, pool, "USER").ID
	}

	svc := newBookingService(pool)
	in := booking.CreateAppointmentInput{
		ServiceID:       service.ID,
		TimeSlotID:      slot.ID,
		AppointmentDate: slot.StartTime.Format("2006-01-02"),
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	start := make(chan struct{})
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.CreateAppointment(ctx, users[i], in)
		}(i)
	}
	close(start)
	wg.Wait()

	var won, conflicts int
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case apperr.IsConflict(err):
			conflicts++
		default:
			t.Errorf("contender %d: unexpected error: %v", i, err)
		}
	}
	if won != 1 {
		t.Errorf("expected exactly 1 winner, got %d", won)
	}
	if conflicts != contenders-1 {
		t.Errorf("expected %d conflicts, got %d", contenders-1, conflicts)
	}

	var active int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE time_slot_id = $1 AND status IN ('PENDING', 'CONFIRMED')`,
		slot.ID,
	).Scan(&active)
	if err != nil {
		t.Fatalf("count appointments: %v", err)
	}
	if active != 1 {
		t.Errorf("expected exactly 1 active appointment on the slot, got %d", active)
	}

	var available bool
	if err := pool.QueryRow(ctx, `SELECT is_available FROM time_slot WHERE id = $1`, slot.ID).Scan(&available); err != nil {
		t.Fatalf("read slot: %v", err)
	}
	if available {
		t.Error("expected slot to be held after the winning booking")
	}
}

// The partial unique index is the last line of defense: a second live
// appointment on the same slot is rejected by the store itself.
func TestActiveAppointmentIndex_RejectsSecondInsert(t *testing.T) {
	ctx := context.Background()
	pool := globalDB.Pool

	providerUser := createTestUser(t, ctx, pool, "PROVIDER")
	provider := createTestProvider(t, ctx, pool, providerUser.ID)
	service := createTestService(t, ctx, pool, provider.ID)
	slot := createTestSlot(t, ctx, pool, provider.ID, time.Now().UTC().Add(72*time.Hour).Truncate(time.Hour))

	repo := booking.NewAppointmentRepoPG(pool)
	day := booking.Today(slot.StartTime)

	first := &booking.Appointment{
		UserID:          createTestUser(t, ctx, pool, "USER").ID,
		ServiceID:       service.ID,
		TimeSlotID:      slot.ID,
		AppointmentDate: day,
		Status:          booking.StatusPending,
		TotalPrice:      service.Price,
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	second := &booking.Appointment{
		UserID:          createTestUser(t, ctx, pool, "USER").ID,
		ServiceID:       service.ID,
		TimeSlotID:      slot.ID,
		AppointmentDate: day,
		Status:          booking.StatusConfirmed,
		TotalPrice:      service.Price,
	}
	err := repo.Create(ctx, second)
	if !db.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for second live appointment, got %v", err)
	}

	// A cancelled appointment does not hold the slot.
	cancelled := &booking.Appointment{
		UserID:          createTestUser(t, ctx, pool, "USER").ID,
		ServiceID:       service.ID,
		TimeSlotID:      slot.ID,
		AppointmentDate: day,
		Status:          booking.StatusCancelled,
		TotalPrice:      service.Price,
	}
	if err := repo.Create(ctx, cancelled); err != nil {
		t.Fatalf("cancelled appointment should not collide with the index: %v", err)
	}
}
