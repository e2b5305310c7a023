package catalog

import (
	"context"
	"fmt"

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

const providerCols = `id, user_id, business_name, service_type, phone, address, is_active, created_at, updated_at`

const serviceCols = `id, provider_id, name, description, duration_minutes, price, is_active, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.ServiceType, &p.Phone,
		&p.Address, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.ProviderID, &s.Name, &s.Description, &s.DurationMinutes,
		&s.Price, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type providerRepoPG struct {
	pool *pgxpool.Pool
}

// NewProviderRepoPG creates a Postgres-backed provider repository.
func NewProviderRepoPG(pool *pgxpool.Pool) ProviderRepository {
	return &providerRepoPG{pool: pool}
}

func (r *providerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *providerRepoPG) Create(ctx context.Context, p *Provider) error {
	query := `
		INSERT INTO provider (user_id, business_name, service_type, phone, address, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.conn(ctx).QueryRow(ctx, query,
		p.UserID, p.BusinessName, p.ServiceType, p.Phone, p.Address, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *providerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	query := `SELECT ` + providerCols + ` FROM provider WHERE id = $1`
	return scanProvider(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *providerRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Provider, error) {
	query := `SELECT ` + providerCols + ` FROM provider WHERE user_id = $1`
	return scanProvider(r.conn(ctx).QueryRow(ctx, query, userID))
}

func (r *providerRepoPG) Update(ctx context.Context, p *Provider) error {
	query := `
		UPDATE provider
		SET business_name = $2, service_type = $3, phone = $4, address = $5,
		    is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.conn(ctx).QueryRow(ctx, query,
		p.ID, p.BusinessName, p.ServiceType, p.Phone, p.Address, p.IsActive,
	).Scan(&p.UpdatedAt)
}

func (r *providerRepoPG) ListActive(ctx context.Context, serviceType string, limit, offset int) ([]*Provider, int, error) {
	where := ` WHERE is_active = TRUE`
	args := []interface{}{}
	idx := 1

	if serviceType != "" {
		where += fmt.Sprintf(` AND LOWER(service_type) = LOWER($%d)`, idx)
		args = append(args, serviceType)
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM provider` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + providerCols + ` FROM provider` + where +
		fmt.Sprintf(` ORDER BY business_name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var providers []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		providers = append(providers, p)
	}
	return providers, total, rows.Err()
}

type serviceRepoPG struct {
	pool *pgxpool.Pool
}

// NewServiceRepoPG creates a Postgres-backed service repository.
func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepoPG{pool: pool}
}

func (r *serviceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *serviceRepoPG) Create(ctx context.Context, s *Service) error {
	query := `
		INSERT INTO service (provider_id, name, description, duration_minutes, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.conn(ctx).QueryRow(ctx, query,
		s.ProviderID, s.Name, s.Description, s.DurationMinutes, s.Price, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *serviceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	query := `SELECT ` + serviceCols + ` FROM service WHERE id = $1`
	return scanService(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *serviceRepoPG) GetByProviderAndName(ctx context.Context, providerID uuid.UUID, name string) (*Service, error) {
	query := `SELECT ` + serviceCols + ` FROM service WHERE provider_id = $1 AND LOWER(name) = LOWER($2) AND is_active = TRUE`
	return scanService(r.conn(ctx).QueryRow(ctx, query, providerID, name))
}

func (r *serviceRepoPG) Update(ctx context.Context, s *Service) error {
	query := `
		UPDATE service
		SET name = $2, description = $3, duration_minutes = $4, price = $5,
		    is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.conn(ctx).QueryRow(ctx, query,
		s.ID, s.Name, s.Description, s.DurationMinutes, s.Price, s.IsActive,
	).Scan(&s.UpdatedAt)
}

func (r *serviceRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, includeInactive bool) ([]*Service, error) {
	query := `SELECT ` + serviceCols + ` FROM service WHERE provider_id = $1`
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.conn(ctx).Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *serviceRepoPG) ListActive(ctx context.Context, search string, limit, offset int) ([]*Service, int, error) {
	where := ` WHERE is_active = TRUE`
	args := []interface{}{}
	idx := 1

	if search != "" {
		where += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+search+"%")
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM service` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + serviceCols + ` FROM service` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var services []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		services = append(services, s)
	}
	return services, total, rows.Err()
}
