package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatus_TransitionTable(t *testing.T) {
	all := []BookingStatus{
		StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow,
	}

	allowed := map[BookingStatus][]BookingStatus{
		StatusPending:    {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow},
		StatusInProgress: {StatusCompleted, StatusCancelled},
		StatusCompleted:  {},
		StatusCancelled:  {},
		StatusNoShow:     {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestBookingStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())

	// Unknown statuses are treated as terminal dead ends.
	assert.True(t, BookingStatus("bogus").IsTerminal())
}

func TestBookingStatus_BlocksSlot(t *testing.T) {
	assert.True(t, StatusPending.BlocksSlot())
	assert.True(t, StatusConfirmed.BlocksSlot())
	assert.False(t, StatusInProgress.BlocksSlot())
	assert.False(t, StatusCompleted.BlocksSlot())
	assert.False(t, StatusCancelled.BlocksSlot())
	assert.False(t, StatusNoShow.BlocksSlot())
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseBookingStatus("shipped")
	assert.Error(t, err)
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("partially_refunded")
	require.NoError(t, err)
	assert.Equal(t, PaymentPartiallyRefunded, status)

	_, err = ParsePaymentStatus("escrowed")
	assert.Error(t, err)
}

func TestCancelActor_IsValid(t *testing.T) {
	for _, a := range []CancelActor{CancelledByUser, CancelledByProvider, CancelledByAdmin, CancelledBySystem} {
		assert.True(t, a.IsValid(), "actor %s", a)
	}
	assert.False(t, CancelActor("robot").IsValid())
	assert.False(t, CancelActor("").IsValid())
}
