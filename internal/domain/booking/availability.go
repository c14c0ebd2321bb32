package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConflictFinder is the repository slice the availability checker needs.
type ConflictFinder interface {
	// FindConflicting returns slot-blocking bookings (pending or confirmed)
	// for the service on the given date whose [start,end) window overlaps the
	// given one. excludeID, when non-nil, omits that booking from the result.
	FindConflicting(ctx context.Context, serviceID uuid.UUID, date time.Time, start, end TimeOfDay, excludeID *uuid.UUID) ([]*Booking, error)
}

// AvailabilityChecker determines whether a service's time slot is free of
// conflicting bookings. It is a pure read; repository failures propagate
// unchanged and are never resolved to "available".
type AvailabilityChecker struct {
	repo ConflictFinder
}

// NewAvailabilityChecker creates an AvailabilityChecker over the given repository.
func NewAvailabilityChecker(repo ConflictFinder) *AvailabilityChecker {
	return &AvailabilityChecker{repo: repo}
}

// IsAvailable returns true if no pending or confirmed booking for the service
// on the given date overlaps the half-open window [start, end). excludeID
// omits a booking being modified from the conflict set.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, serviceID uuid.UUID, date time.Time, start, end TimeOfDay, excludeID *uuid.UUID) (bool, error) {
	conflicts, err := c.repo.FindConflicting(ctx, serviceID, NormalizeDate(date), start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check slot availability: %w", err)
	}

	for _, other := range conflicts {
		// The repository filters by window; re-check the half-open overlap
		// here so the invariant does not depend on the query alone.
		if other.Status().BlocksSlot() && Overlaps(start, end, other.Start(), other.End()) {
			return false, nil
		}
	}
	return true, nil
}
