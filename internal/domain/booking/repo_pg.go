package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/db"
)

// queryable is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

const slotCols = `id, provider_id, start_time, end_time, is_available, is_blocked, created_at, updated_at`

const appointmentCols = `id, user_id, service_id, time_slot_id, appointment_date, status, total_price, notes, cancel_reason, created_at, updated_at`

func scanSlot(row pgx.Row) (*TimeSlot, error) {
	var s TimeSlot
	err := row.Scan(&s.ID, &s.ProviderID, &s.StartTime, &s.EndTime,
		&s.IsAvailable, &s.IsBlocked, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.UserID, &a.ServiceID, &a.TimeSlotID, &a.AppointmentDate,
		&a.Status, &a.TotalPrice, &a.Notes, &a.CancelReason, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type slotRepoPG struct {
	pool *pgxpool.Pool
}

// NewSlotRepoPG creates a Postgres-backed time slot repository.
func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository {
	return &slotRepoPG{pool: pool}
}

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *slotRepoPG) CreateBatch(ctx context.Context, slots []*TimeSlot) ([]*TimeSlot, error) {
	query := `
		INSERT INTO time_slot (provider_id, start_time, end_time, is_available, is_blocked)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider_id, start_time, end_time) DO NOTHING
		RETURNING id, created_at, updated_at`

	var created []*TimeSlot
	for _, s := range slots {
		err := r.conn(ctx).QueryRow(ctx, query,
			s.ProviderID, s.StartTime, s.EndTime, s.IsAvailable, s.IsBlocked,
		).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue // already exists
		}
		if err != nil {
			return nil, err
		}
		created = append(created, s)
	}
	return created, nil
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	query := `SELECT ` + slotCols + ` FROM time_slot WHERE id = $1`
	return scanSlot(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *slotRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	query := `SELECT ` + slotCols + ` FROM time_slot WHERE id = $1 FOR UPDATE`
	return scanSlot(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *slotRepoPG) ExistingStarts(ctx context.Context, providerID uuid.UUID, from, to time.Time) (map[int64]bool, error) {
	query := `SELECT start_time FROM time_slot WHERE provider_id = $1 AND start_time >= $2 AND start_time < $3`

	rows, err := r.conn(ctx).Query(ctx, query, providerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	starts := make(map[int64]bool)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		starts[t.Unix()] = true
	}
	return starts, rows.Err()
}

func (r *slotRepoPG) FindAvailable(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*TimeSlot, error) {
	query := `
		SELECT ` + slotCols + `
		FROM time_slot ts
		WHERE ts.provider_id = $1
		  AND ts.start_time >= $2 AND ts.start_time < $3
		  AND ts.is_available = TRUE AND ts.is_blocked = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM appointment a
			WHERE a.time_slot_id = ts.id AND a.status IN ('PENDING', 'CONFIRMED')
		  )
		ORDER BY ts.start_time ASC`

	rows, err := r.conn(ctx).Query(ctx, query, providerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*TimeSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *slotRepoPG) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	query := `UPDATE time_slot SET is_available = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.conn(ctx).Exec(ctx, query, id, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slotRepoPG) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*TimeSlot, error) {
	query := `
		UPDATE time_slot
		SET is_blocked = $2, is_available = NOT $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + slotCols

	return scanSlot(r.conn(ctx).QueryRow(ctx, query, id, blocked))
}

func (r *slotRepoPG) HasActiveAppointment(ctx context.Context, slotID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE time_slot_id = $1 AND status IN ('PENDING', 'CONFIRMED')
		)`

	var exists bool
	err := r.conn(ctx).QueryRow(ctx, query, slotID).Scan(&exists)
	return exists, err
}

type appointmentRepoPG struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepoPG creates a Postgres-backed appointment repository.
func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO appointment (user_id, service_id, time_slot_id, appointment_date, status, total_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return r.conn(ctx).QueryRow(ctx, query,
		a.UserID, a.ServiceID, a.TimeSlotID, a.AppointmentDate, a.Status, a.TotalPrice, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + appointmentCols + ` FROM appointment WHERE id = $1`
	return scanAppointment(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	query := `
		UPDATE appointment
		SET time_slot_id = $2, appointment_date = $3, status = $4, notes = $5,
		    cancel_reason = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.conn(ctx).QueryRow(ctx, query,
		a.ID, a.TimeSlotID, a.AppointmentDate, a.Status, a.Notes, a.CancelReason,
	).Scan(&a.UpdatedAt)
}

func (r *appointmentRepoPG) ExistsActiveBySlot(ctx context.Context, slotID, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE time_slot_id = $1 AND status IN ('PENDING', 'CONFIRMED') AND id != $2
		)`

	var exists bool
	err := r.conn(ctx).QueryRow(ctx, query, slotID, excludeID).Scan(&exists)
	return exists, err
}

func (r *appointmentRepoPG) ExistsActiveByService(ctx context.Context, serviceID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE service_id = $1 AND status IN ('PENDING', 'CONFIRMED')
		)`

	var exists bool
	err := r.conn(ctx).QueryRow(ctx, query, serviceID).Scan(&exists)
	return exists, err
}

func (r *appointmentRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE user_id = $1`
	args := []interface{}{userID}
	idx := 2

	if status != "" {
		where += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, status)
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM appointment` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + appointmentCols + ` FROM appointment` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	return r.list(ctx, query, args, total)
}

func (r *appointmentRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE s.provider_id = $1`
	args := []interface{}{providerID}
	idx := 2

	if status != "" {
		where += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, status)
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM appointment a JOIN service s ON s.id = a.service_id` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT a.id, a.user_id, a.service_id, a.time_slot_id, a.appointment_date, a.status,
		       a.total_price, a.notes, a.cancel_reason, a.created_at, a.updated_at
		FROM appointment a
		JOIN service s ON s.id = a.service_id` + where +
		fmt.Sprintf(` ORDER BY a.appointment_date ASC, a.created_at ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	return r.list(ctx, query, args, total)
}

func (r *appointmentRepoPG) list(ctx context.Context, query string, args []interface{}, total int) ([]*Appointment, int, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appointments []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, a)
	}
	return appointments, total, rows.Err()
}

func (r *appointmentRepoPG) StatsByUser(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	return r.stats(ctx, `WHERE user_id = $1`, userID)
}

func (r *appointmentRepoPG) StatsByProvider(ctx context.Context, providerID uuid.UUID) (*Stats, error) {
	return r.stats(ctx, `WHERE service_id IN (SELECT id FROM service WHERE provider_id = $1)`, providerID)
}

func (r *appointmentRepoPG) stats(ctx context.Context, where string, arg interface{}) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		       COUNT(*) FILTER (WHERE status = 'CANCELLED')
		FROM appointment ` + where

	var total, pending, confirmed, completed, cancelled int
	err := r.conn(ctx).QueryRow(ctx, query, arg).Scan(&total, &pending, &confirmed, &completed, &cancelled)
	if err != nil {
		return nil, err
	}
	return NewStats(total, pending, confirmed, completed, cancelled), nil
}

func (r *appointmentRepoPG) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE appointment a
		SET status = 'COMPLETED', updated_at = NOW()
		FROM time_slot ts
		WHERE a.time_slot_id = ts.id
		  AND a.status = 'CONFIRMED'
		  AND ts.end_time <= $1`

	tag, err := r.conn(ctx).Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
