package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sunil4510/smart-appointment-booking-system/pkg/apperr"
)

// CreateProviderInput carries the fields for registering a provider profile.
type CreateProviderInput struct {
	BusinessName string  `json:"businessName"`
	ServiceType  *string `json:"serviceType"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
}

// UpdateProviderInput carries partial provider updates. Nil fields are
// left unchanged.
type UpdateProviderInput struct {
	BusinessName *string `json:"businessName"`
	ServiceType  *string `json:"serviceType"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	IsActive     *bool   `json:"isActive"`
}

// CreateServiceInput carries the fields for creating a bookable service.
type CreateServiceInput struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// UpdateServiceInput carries partial service updates.
type UpdateServiceInput struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	DurationMinutes *int     `json:"durationMinutes"`
	Price           *float64 `json:"price"`
	IsActive        *bool    `json:"isActive"`
}

// AppointmentChecker is the slice of the booking domain the catalog
// needs: whether a service is still referenced by a live appointment.
type AppointmentChecker interface {
	ExistsActiveByService(ctx context.Context, serviceID uuid.UUID) (bool, error)
}

// CatalogService implements provider and service management.
type CatalogService struct {
	providers    ProviderRepository
	services     ServiceRepository
	appointments AppointmentChecker
}

func NewCatalogService(providers ProviderRepository, services ServiceRepository, appointments AppointmentChecker) *CatalogService {
	return &CatalogService{providers: providers, services: services, appointments: appointments}
}

// CreateProvider registers a provider profile for the given user. A user
// may have at most one profile.
func (s *CatalogService) CreateProvider(ctx context.Context, userID uuid.UUID, in CreateProviderInput) (*Provider, error) {
	if strings.TrimSpace(in.BusinessName) == "" {
		return nil, apperr.Validation("Business name is required")
	}

	if _, err := s.providers.GetByUserID(ctx, userID); err == nil {
		return nil, apperr.Conflict("Provider profile already exists for this user")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	p := &Provider{
		UserID:       userID,
		BusinessName: strings.TrimSpace(in.BusinessName),
		ServiceType:  in.ServiceType,
		Phone:        in.Phone,
		Address:      in.Address,
		IsActive:     true,
	}
	if err := s.providers.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProvider returns a provider by id.
func (s *CatalogService) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	p, err := s.providers.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Provider not found")
	}
	return p, err
}

// ProviderByUser returns the provider profile owned by the given user.
func (s *CatalogService) ProviderByUser(ctx context.Context, userID uuid.UUID) (*Provider, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Provider profile not found")
	}
	return p, err
}

// UpdateProvider applies a partial update to the caller's own profile.
func (s *CatalogService) UpdateProvider(ctx context.Context, userID uuid.UUID, in UpdateProviderInput) (*Provider, error) {
	p, err := s.ProviderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.BusinessName != nil {
		if strings.TrimSpace(*in.BusinessName) == "" {
			return nil, apperr.Validation("Business name is required")
		}
		p.BusinessName = strings.TrimSpace(*in.BusinessName)
	}
	if in.ServiceType != nil {
		p.ServiceType = in.ServiceType
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.providers.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProviders returns active providers, optionally filtered by service type.
func (s *CatalogService) ListProviders(ctx context.Context, serviceType string, limit, offset int) ([]*Provider, int, error) {
	return s.providers.ListActive(ctx, serviceType, limit, offset)
}

// CreateService creates a bookable service under the caller's provider
// profile. Service names are unique per provider, case-insensitively.
func (s *CatalogService) CreateService(ctx context.Context, userID uuid.UUID, in CreateServiceInput) (*Service, error) {
	provider, err := s.ProviderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := validateServiceFields(in.Name, in.DurationMinutes, in.Price); err != nil {
		return nil, err
	}

	if _, err := s.services.GetByProviderAndName(ctx, provider.ID, in.Name); err == nil {
		return nil, apperr.Conflict("Service with this name already exists for this provider")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	svc := &Service{
		ProviderID:      provider.ID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		IsActive:        true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// GetService returns a service by id.
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Service not found")
	}
	return svc, err
}

// UpdateService applies a partial update to a service owned by the caller.
func (s *CatalogService) UpdateService(ctx context.Context, userID, serviceID uuid.UUID, in UpdateServiceInput) (*Service, error) {
	provider, err := s.ProviderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	svc, err := s.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != provider.ID {
		return nil, apperr.Forbidden("You can only modify your own services")
	}

	if in.Name != nil {
		if !strings.EqualFold(*in.Name, svc.Name) {
			if _, err := s.services.GetByProviderAndName(ctx, provider.ID, *in.Name); err == nil {
				return nil, apperr.Conflict("Service with this name already exists for this provider")
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return nil, err
			}
		}
		svc.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		svc.Description = in.Description
	}
	if in.DurationMinutes != nil {
		svc.DurationMinutes = *in.DurationMinutes
	}
	if in.Price != nil {
		svc.Price = *in.Price
	}
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}

	if err := validateServiceFields(svc.Name, svc.DurationMinutes, svc.Price); err != nil {
		return nil, err
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeactivateService soft-deletes a service owned by the caller. A service
// still referenced by a pending or confirmed appointment cannot be
// deleted; completed and cancelled appointments keep their snapshotted
// price and remain valid.
func (s *CatalogService) DeactivateService(ctx context.Context, userID, serviceID uuid.UUID) error {
	provider, err := s.ProviderByUser(ctx, userID)
	if err != nil {
		return err
	}

	svc, err := s.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	if svc.ProviderID != provider.ID {
		return apperr.Forbidden("You can only modify your own services")
	}

	held, err := s.appointments.ExistsActiveByService(ctx, serviceID)
	if err != nil {
		return err
	}
	if held {
		return apperr.Validation("Cannot delete service with pending or confirmed appointments")
	}

	svc.IsActive = false
	return s.services.Update(ctx, svc)
}

// ListServices returns active services matching an optional name search.
func (s *CatalogService) ListServices(ctx context.Context, search string, limit, offset int) ([]*Service, int, error) {
	return s.services.ListActive(ctx, search, limit, offset)
}

// ListProviderServices returns a provider's services. Owners see inactive
// services as well.
func (s *CatalogService) ListProviderServices(ctx context.Context, providerID uuid.UUID, includeInactive bool) ([]*Service, error) {
	if _, err := s.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	return s.services.ListByProvider(ctx, providerID, includeInactive)
}

func validateServiceFields(name string, duration int, price float64) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("Service name is required")
	}
	if duration <= 0 {
		return apperr.Validation("Duration must be greater than zero")
	}
	if price < 0 {
		return apperr.Validation("Price cannot be negative")
	}
	return nil
}
