package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
//
// Save must be backed by a storage-level conflict guard so that of two racing
// creations for overlapping, availability-checked slots at most one succeeds;
// the loser surfaces as a SlotUnavailableError, never a generic persistence
// error.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindConflicting returns slot-blocking bookings overlapping the window.
	FindConflicting(ctx context.Context, serviceID uuid.UUID, date time.Time, start, end TimeOfDay, excludeID *uuid.UUID) ([]*Booking, error)

	// Query retrieves bookings matching a typed filter with the total count.
	Query(ctx context.Context, filter *Filter) ([]*Booking, int64, error)

	// CountByFilter returns the number of bookings matching a typed filter.
	CountByFilter(ctx context.Context, filter *Filter) (int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// RatingSummary returns the mean score and count of rated bookings for a service.
	RatingSummary(ctx context.Context, serviceID uuid.UUID) (float64, int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// DeleteByID removes a booking. Administrative override only; normal
	// cancellation is a status change, not a removal.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
