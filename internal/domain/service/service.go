package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookora/service-marketplace/pkg/domain"
)

// PriceType describes how a service's unit price is quoted.
type PriceType string

const (
	PriceHourly  PriceType = "hourly"
	PriceDaily   PriceType = "daily"
	PriceWeekly  PriceType = "weekly"
	PriceMonthly PriceType = "monthly"
	PriceFixed   PriceType = "fixed"
)

// IsValid returns true if the price type is recognized.
func (p PriceType) IsValid() bool {
	switch p {
	case PriceHourly, PriceDaily, PriceWeekly, PriceMonthly, PriceFixed:
		return true
	}
	return false
}

// Service is a bookable marketplace listing owned by a provider. The booking
// core reads its unit price and active flag; rating aggregates are written
// back when bookings are rated.
type Service struct {
	id          uuid.UUID
	providerID  uuid.UUID
	name        string
	description string
	priceType   PriceType
	unitPrice   float64
	currency    string
	active      bool

	ratingAverage float64
	ratingCount   int64

	createdAt time.Time
	updatedAt time.Time
}

// NewService creates an active Service listing.
func NewService(providerID uuid.UUID, name, description string, priceType PriceType, unitPrice float64, currency string) (*Service, error) {
	if providerID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("service name is required")
	}
	if !priceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid price type: %s", priceType))
	}
	if unitPrice < 0 {
		return nil, domain.NewValidationError("unit price cannot be negative")
	}

	now := time.Now().UTC()
	return &Service{
		id:          uuid.New(),
		providerID:  providerID,
		name:        name,
		description: description,
		priceType:   priceType,
		unitPrice:   unitPrice,
		currency:    currency,
		active:      true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructService rebuilds a Service from persistence data (no validation).
func ReconstructService(
	id, providerID uuid.UUID,
	name, description string,
	priceType PriceType,
	unitPrice float64,
	currency string,
	active bool,
	ratingAverage float64,
	ratingCount int64,
	createdAt, updatedAt time.Time,
) *Service {
	return &Service{
		id:            id,
		providerID:    providerID,
		name:          name,
		description:   description,
		priceType:     priceType,
		unitPrice:     unitPrice,
		currency:      currency,
		active:        active,
		ratingAverage: ratingAverage,
		ratingCount:   ratingCount,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the service's unique identifier.
func (s *Service) ID() uuid.UUID { return s.id }

// ProviderID returns the owning provider's user ID.
func (s *Service) ProviderID() uuid.UUID { return s.providerID }

// Name returns the listing name.
func (s *Service) Name() string { return s.name }

// Description returns the listing description.
func (s *Service) Description() string { return s.description }

// PriceType returns how the unit price is quoted.
func (s *Service) PriceType() PriceType { return s.priceType }

// UnitPrice returns the price per unit.
func (s *Service) UnitPrice() float64 { return s.unitPrice }

// Currency returns the currency code.
func (s *Service) Currency() string { return s.currency }

// IsActive returns true if the service accepts new bookings.
func (s *Service) IsActive() bool { return s.active }

// RatingAverage returns the mean of all booking ratings for the service.
func (s *Service) RatingAverage() float64 { return s.ratingAverage }

// RatingCount returns the number of ratings received.
func (s *Service) RatingCount() int64 { return s.ratingCount }

// CreatedAt returns the creation timestamp.
func (s *Service) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (s *Service) UpdatedAt() time.Time { return s.updatedAt }

// UpdateDetails changes the listing's user-facing attributes.
func (s *Service) UpdateDetails(name, description string, priceType PriceType, unitPrice float64) error {
	if name == "" {
		return domain.NewValidationError("service name is required")
	}
	if !priceType.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid price type: %s", priceType))
	}
	if unitPrice < 0 {
		return domain.NewValidationError("unit price cannot be negative")
	}
	s.name = name
	s.description = description
	s.priceType = priceType
	s.unitPrice = unitPrice
	s.updatedAt = time.Now().UTC()
	return nil
}

// Activate marks the service as accepting bookings.
func (s *Service) Activate() {
	s.active = true
	s.updatedAt = time.Now().UTC()
}

// Deactivate stops the service from accepting new bookings. Existing
// bookings are unaffected.
func (s *Service) Deactivate() {
	s.active = false
	s.updatedAt = time.Now().UTC()
}

// SetRatingAggregate overwrites the service's rating aggregate.
func (s *Service) SetRatingAggregate(average float64, count int64) {
	s.ratingAverage = average
	s.ratingCount = count
	s.updatedAt = time.Now().UTC()
}
