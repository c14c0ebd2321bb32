package service

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository defines the persistence contract for service listings.
type ServiceRepository interface {
	// FindByID retrieves a service by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)

	// ListActive retrieves active services with pagination.
	ListActive(ctx context.Context, page, limit int) ([]*Service, int64, error)

	// ListByProviderID retrieves a provider's services with pagination.
	ListByProviderID(ctx context.Context, providerID uuid.UUID, page, limit int) ([]*Service, int64, error)

	// Save persists a new service.
	Save(ctx context.Context, svc *Service) error

	// Update persists changes to an existing service.
	Update(ctx context.Context, svc *Service) error

	// UpdateAverageRating overwrites the rating aggregate for a service.
	UpdateAverageRating(ctx context.Context, id uuid.UUID, average float64, count int64) error
}
