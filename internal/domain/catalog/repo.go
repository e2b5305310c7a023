package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProviderRepository defines provider persistence operations.
type ProviderRepository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	ListActive(ctx context.Context, serviceType string, limit, offset int) ([]*Provider, int, error)
}

// ServiceRepository defines service persistence operations.
type ServiceRepository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
	// GetByProviderAndName matches active services by case-insensitive
	// name. Soft-deleted services do not reserve their name.
	GetByProviderAndName(ctx context.Context, providerID uuid.UUID, name string) (*Service, error)
	Update(ctx context.Context, s *Service) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, includeInactive bool) ([]*Service, error)
	ListActive(ctx context.Context, search string, limit, offset int) ([]*Service, int, error)
}
