package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellationFee_Brackets(t *testing.T) {
	cases := []struct {
		name       string
		hoursUntil float64
		total      float64
		want       float64
	}{
		{"well in advance", 72, 200, 0},
		{"exactly 48h is free", 48, 200, 0},
		{"just under 48h", 47.99, 200, 20},
		{"30h out", 30, 100, 10},
		{"exactly 24h is 10%", 24, 200, 20},
		{"just under 24h", 23.99, 200, 100},
		{"exactly 2h is 50%", 2, 200, 100},
		{"just under 2h", 1.99, 200, 200},
		{"already started", -1, 200, 200},
		{"rounding 10%", 30, 99.99, 10},
		{"rounding 50%", 3, 33.33, 16.67},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CancellationFee(tc.total, tc.hoursUntil), 1e-9)
		})
	}
}

func TestCancellationFee_Monotonic(t *testing.T) {
	// Less notice never means a lower fee.
	total := 500.0
	prev := CancellationFee(total, 100)
	for h := 99.5; h >= -5; h -= 0.5 {
		fee := CancellationFee(total, h)
		assert.GreaterOrEqual(t, fee, prev, "fee decreased at %v hours", h)
		prev = fee
	}
}

func testBookingAt(t *testing.T, status BookingStatus, startsIn time.Duration, now time.Time) *Booking {
	t.Helper()
	start := now.Add(startsIn)
	startTOD := TimeOfDay{Hour: start.Hour(), Minute: start.Minute()}
	endTOD := TimeOfDay{Hour: startTOD.Hour + 1, Minute: startTOD.Minute}
	if endTOD.Hour > 23 {
		// Keep the window inside the day instead of wrapping past midnight.
		endTOD = TimeOfDay{Hour: 23, Minute: 59}
	}

	bk, err := NewBooking(
		uuid.New(), uuid.New(), uuid.New(),
		start, startTOD, endTOD,
		2, 50, "USD", "",
	)
	require.NoError(t, err)
	bk.status = status
	return bk
}

func TestCancellationPolicy_Lenient(t *testing.T) {
	policy := CancellationPolicy{Lenient: true}
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending cancels free regardless of notice", func(t *testing.T) {
		bk := testBookingAt(t, StatusPending, time.Hour, now)
		fee, err := policy.FeeFor(bk, now)
		require.NoError(t, err)
		assert.Zero(t, fee)
	})

	t.Run("confirmed uses the time brackets", func(t *testing.T) {
		bk := testBookingAt(t, StatusConfirmed, 30*time.Hour, now)
		fee, err := policy.FeeFor(bk, now)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, fee, 1e-9) // 10% of 100
	})

	t.Run("confirmed late evening slot", func(t *testing.T) {
		// 13h notice puts the start at 23:00, the last bookable hour.
		bk := testBookingAt(t, StatusConfirmed, 13*time.Hour, now)
		fee, err := policy.FeeFor(bk, now)
		require.NoError(t, err)
		assert.InDelta(t, 50.0, fee, 1e-9) // 50% of 100
	})

	t.Run("in_progress is not cancellable for a fee", func(t *testing.T) {
		bk := testBookingAt(t, StatusInProgress, -time.Hour, now)
		_, err := policy.FeeFor(bk, now)
		assert.Error(t, err)
	})

	t.Run("completed is not cancellable", func(t *testing.T) {
		bk := testBookingAt(t, StatusCompleted, -24*time.Hour, now)
		_, err := policy.FeeFor(bk, now)
		assert.Error(t, err)
	})
}

func TestCancellationPolicy_Strict(t *testing.T) {
	policy := CancellationPolicy{Lenient: false}
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	// Strict charges the bracketed fee even before acceptance.
	bk := testBookingAt(t, StatusPending, 30*time.Hour, now)
	fee, err := policy.FeeFor(bk, now)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, fee, 1e-9)
}

func TestBooking_CanBeCancelled(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	confirmedFar := testBookingAt(t, StatusConfirmed, 48*time.Hour, now)
	assert.True(t, confirmedFar.CanBeCancelled(now))

	confirmedNear := testBookingAt(t, StatusConfirmed, 12*time.Hour, now)
	assert.False(t, confirmedNear.CanBeCancelled(now))

	pendingFar := testBookingAt(t, StatusPending, 48*time.Hour, now)
	assert.False(t, pendingFar.CanBeCancelled(now))
}
