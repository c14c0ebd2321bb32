package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConflictFinder struct {
	bookings []*Booking
	err      error
}

func (s *stubConflictFinder) FindConflicting(_ context.Context, _ uuid.UUID, _ time.Time, _, _ TimeOfDay, _ *uuid.UUID) ([]*Booking, error) {
	return s.bookings, s.err
}

func TestAvailabilityChecker_FreeSlot(t *testing.T) {
	checker := NewAvailabilityChecker(&stubConflictFinder{})

	free, err := checker.IsAvailable(context.Background(), uuid.New(),
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		TimeOfDay{Hour: 10}, TimeOfDay{Hour: 12}, nil)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestAvailabilityChecker_OverlappingBlocker(t *testing.T) {
	existing := newTestBooking(t) // pending 10:00-12:00
	checker := NewAvailabilityChecker(&stubConflictFinder{bookings: []*Booking{existing}})

	free, err := checker.IsAvailable(context.Background(), existing.ServiceID(),
		existing.Date(), TimeOfDay{Hour: 11}, TimeOfDay{Hour: 13}, nil)
	require.NoError(t, err)
	assert.False(t, free)
}

func TestAvailabilityChecker_NonBlockingStatusIgnored(t *testing.T) {
	existing := newTestBooking(t)
	require.NoError(t, existing.Reject(existing.ProviderID(), "closed"))

	checker := NewAvailabilityChecker(&stubConflictFinder{bookings: []*Booking{existing}})
	free, err := checker.IsAvailable(context.Background(), existing.ServiceID(),
		existing.Date(), TimeOfDay{Hour: 10}, TimeOfDay{Hour: 12}, nil)
	require.NoError(t, err)
	assert.True(t, free, "cancelled bookings do not block the slot")
}

func TestAvailabilityChecker_RepositoryError(t *testing.T) {
	boom := errors.New("connection reset")
	checker := NewAvailabilityChecker(&stubConflictFinder{err: boom})

	free, err := checker.IsAvailable(context.Background(), uuid.New(),
		time.Now(), TimeOfDay{Hour: 10}, TimeOfDay{Hour: 12}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom, "failures propagate, never resolved to available")
	assert.False(t, free)
}
