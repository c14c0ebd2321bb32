package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	serviceDomain "github.com/bookora/service-marketplace/internal/domain/service"
	"github.com/bookora/service-marketplace/pkg/domain"
)

// CreateServiceRequest holds the data needed to create a service listing.
type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	PriceType   string  `json:"price_type" binding:"required"`
	UnitPrice   float64 `json:"unit_price" binding:"required"`
	Currency    string  `json:"currency" binding:"required"`
}

// UpdateServiceRequest holds the mutable fields of a service listing.
type UpdateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	PriceType   string  `json:"price_type" binding:"required"`
	UnitPrice   float64 `json:"unit_price" binding:"required"`
}

// ServiceDTO is the response representation of a service listing.
type ServiceDTO struct {
	ID            uuid.UUID `json:"id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	PriceType     string    `json:"price_type"`
	UnitPrice     float64   `json:"unit_price"`
	Currency      string    `json:"currency"`
	Active        bool      `json:"active"`
	RatingAverage float64   `json:"rating_average"`
	RatingCount   int64     `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ServiceCatalog manages service listings: providers create and maintain
// them, users browse the active ones.
type ServiceCatalog struct {
	services serviceDomain.ServiceRepository
	logger   *zap.Logger
}

// NewServiceCatalog creates a ServiceCatalog.
func NewServiceCatalog(services serviceDomain.ServiceRepository, logger *zap.Logger) *ServiceCatalog {
	return &ServiceCatalog{services: services, logger: logger}
}

// CreateService creates an active listing owned by the provider.
func (s *ServiceCatalog) CreateService(ctx context.Context, providerID uuid.UUID, req CreateServiceRequest) (*ServiceDTO, error) {
	svc, err := serviceDomain.NewService(
		providerID, req.Name, req.Description,
		serviceDomain.PriceType(req.PriceType), req.UnitPrice, req.Currency,
	)
	if err != nil {
		return nil, err
	}
	if err := s.services.Save(ctx, svc); err != nil {
		return nil, err
	}
	s.logger.Info("service created",
		zap.String("service_id", svc.ID().String()),
		zap.String("provider_id", providerID.String()),
	)
	return toServiceDTO(svc), nil
}

// UpdateService changes a listing's user-facing attributes. Owner only.
func (s *ServiceCatalog) UpdateService(ctx context.Context, serviceID, actorID uuid.UUID, req UpdateServiceRequest) (*ServiceDTO, error) {
	svc, err := s.ownedService(ctx, serviceID, actorID)
	if err != nil {
		return nil, err
	}
	if err := svc.UpdateDetails(req.Name, req.Description, serviceDomain.PriceType(req.PriceType), req.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return toServiceDTO(svc), nil
}

// ActivateService reopens a listing for bookings. Owner only.
func (s *ServiceCatalog) ActivateService(ctx context.Context, serviceID, actorID uuid.UUID) (*ServiceDTO, error) {
	svc, err := s.ownedService(ctx, serviceID, actorID)
	if err != nil {
		return nil, err
	}
	svc.Activate()
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return toServiceDTO(svc), nil
}

// DeactivateService stops a listing from accepting new bookings. Owner only.
// Existing bookings are unaffected.
func (s *ServiceCatalog) DeactivateService(ctx context.Context, serviceID, actorID uuid.UUID) (*ServiceDTO, error) {
	svc, err := s.ownedService(ctx, serviceID, actorID)
	if err != nil {
		return nil, err
	}
	svc.Deactivate()
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return toServiceDTO(svc), nil
}

// GetService retrieves a single listing.
func (s *ServiceCatalog) GetService(ctx context.Context, serviceID uuid.UUID) (*ServiceDTO, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return toServiceDTO(svc), nil
}

// ListActiveServices lists bookable services for browsing.
func (s *ServiceCatalog) ListActiveServices(ctx context.Context, page, limit int) (*domain.PaginatedResult[ServiceDTO], error) {
	page, limit = clampPage(page, limit)
	services, total, err := s.services.ListActive(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return servicePage(services, total, page, limit), nil
}

// ListProviderServices lists a provider's own services, active or not.
func (s *ServiceCatalog) ListProviderServices(ctx context.Context, providerID uuid.UUID, page, limit int) (*domain.PaginatedResult[ServiceDTO], error) {
	page, limit = clampPage(page, limit)
	services, total, err := s.services.ListByProviderID(ctx, providerID, page, limit)
	if err != nil {
		return nil, err
	}
	return servicePage(services, total, page, limit), nil
}

func (s *ServiceCatalog) ownedService(ctx context.Context, serviceID, actorID uuid.UUID) (*serviceDomain.Service, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID() != actorID {
		return nil, domain.NewForbiddenError("service does not belong to this provider")
	}
	return svc, nil
}

func servicePage(services []*serviceDomain.Service, total int64, page, limit int) *domain.PaginatedResult[ServiceDTO] {
	dtos := make([]ServiceDTO, len(services))
	for i, svc := range services {
		dtos[i] = *toServiceDTO(svc)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func toServiceDTO(svc *serviceDomain.Service) *ServiceDTO {
	return &ServiceDTO{
		ID:            svc.ID(),
		ProviderID:    svc.ProviderID(),
		Name:          svc.Name(),
		Description:   svc.Description(),
		PriceType:     string(svc.PriceType()),
		UnitPrice:     svc.UnitPrice(),
		Currency:      svc.Currency(),
		Active:        svc.IsActive(),
		RatingAverage: svc.RatingAverage(),
		RatingCount:   svc.RatingCount(),
		CreatedAt:     svc.CreatedAt(),
		UpdatedAt:     svc.UpdatedAt(),
	}
}
