package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	serviceDomain "github.com/bookora/service-marketplace/internal/domain/service"
	"github.com/bookora/service-marketplace/pkg/domain"
)

// ServiceModel is the GORM model for the services table.
type ServiceModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name          string    `gorm:"not null;size:200"`
	Description   string    `gorm:"size:2000"`
	PriceType     string    `gorm:"not null;size:10"`
	UnitPrice     float64   `gorm:"not null"`
	Currency      string    `gorm:"not null;size:3"`
	Active        bool      `gorm:"not null;default:true;index"`
	RatingAverage float64   `gorm:"not null;default:0"`
	RatingCount   int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServiceModel) TableName() string {
	return "services"
}

// GormServiceRepository is the GORM-based implementation of ServiceRepository.
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository.
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID retrieves a service by its unique identifier.
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*serviceDomain.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return toDomainService(&model), nil
}

// ListActive retrieves active services with pagination.
func (r *GormServiceRepository) ListActive(ctx context.Context, page, limit int) ([]*serviceDomain.Service, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("active = ?", true), page, limit)
}

// ListByProviderID retrieves a provider's services with pagination.
func (r *GormServiceRepository) ListByProviderID(ctx context.Context, providerID uuid.UUID, page, limit int) ([]*serviceDomain.Service, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("provider_id = ?", providerID), page, limit)
}

// Save persists a new service.
func (r *GormServiceRepository) Save(ctx context.Context, svc *serviceDomain.Service) error {
	if err := r.db.WithContext(ctx).Create(toServiceModel(svc)).Error; err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

// Update persists changes to an existing service.
func (r *GormServiceRepository) Update(ctx context.Context, svc *serviceDomain.Service) error {
	result := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ?", svc.ID()).
		Updates(map[string]interface{}{
			"name":        svc.Name(),
			"description": svc.Description(),
			"price_type":  string(svc.PriceType()),
			"unit_price":  svc.UnitPrice(),
			"active":      svc.IsActive(),
			"updated_at":  svc.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Service", svc.ID().String())
	}
	return nil
}

// UpdateAverageRating overwrites the rating aggregate for a service.
func (r *GormServiceRepository) UpdateAverageRating(ctx context.Context, id uuid.UUID, average float64, count int64) error {
	result := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating_average": average,
			"rating_count":   count,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update service rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Service", id.String())
	}
	return nil
}

func (r *GormServiceRepository) list(ctx context.Context, query *gorm.DB, page, limit int) ([]*serviceDomain.Service, int64, error) {
	var total int64
	if err := query.Model(&ServiceModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	var models []ServiceModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}

	services := make([]*serviceDomain.Service, len(models))
	for i := range models {
		services[i] = toDomainService(&models[i])
	}
	return services, total, nil
}

func toServiceModel(svc *serviceDomain.Service) *ServiceModel {
	return &ServiceModel{
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

func toDomainService(m *ServiceModel) *serviceDomain.Service {
	return serviceDomain.ReconstructService(
		m.ID, m.ProviderID,
		m.Name, m.Description,
		serviceDomain.PriceType(m.PriceType),
		m.UnitPrice,
		m.Currency,
		m.Active,
		m.RatingAverage,
		m.RatingCount,
		m.CreatedAt, m.UpdatedAt,
	)
}
