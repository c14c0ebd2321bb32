//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookora/service-marketplace/internal/application"
	bookingDomain "github.com/bookora/service-marketplace/internal/domain/booking"
	"github.com/bookora/service-marketplace/internal/repository"
	"github.com/bookora/service-marketplace/pkg/auth"
	"github.com/bookora/service-marketplace/pkg/domain"
)

// TestPaymentCaptured_MarksBookingPaid verifies that when a payment.captured
// event is published to payment.events, the booking service picks it up and
// marks the booking's payment as paid without touching its status.
func TestPaymentCaptured_MarksBookingPaid(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupMarketplaceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a pending booking awaiting payment.
	bookingID := uuid.New()
	userID := uuid.New()
	serviceID := uuid.New()
	providerID := uuid.New()
	seedPendingBooking(t, infra.DB, bookingID, userID, serviceID, providerID)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish payment.captured.
	evt := application.PaymentEvent{
		BookingID:  bookingID,
		OrderID:    "order_int_1",
		PaymentRef: "pay_int_1",
		Amount:     100,
		Currency:   "USD",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, application.TopicPaymentEvents,
		"payment-gateway", application.EventPaymentCaptured, evt)

	// Assert: payment status becomes paid, booking status stays pending.
	model := waitForPaymentStatus(t, infra.DB, bookingID, "paid", 15*time.Second)
	assert.Equal(t, "pending", model.Status, "payment events never advance booking status")
	assert.Equal(t, "pay_int_1", model.PaymentRef)
	assert.Equal(t, int64(2), model.Version)

	// Replay the same event: version must not move again.
	publishTestEvent(t, infra.KafkaBrokers, application.TopicPaymentEvents,
		"payment-gateway", application.EventPaymentCaptured, evt)
	time.Sleep(3 * time.Second)

	var after struct{ Version int64 }
	require.NoError(t, infra.DB.Table("bookings").Select("version").Where("id = ?", bookingID).Scan(&after).Error)
	assert.Equal(t, int64(2), after.Version, "replayed event is a no-op")
}

// TestBookingLifecycle_EndToEnd drives create -> accept -> cancel against
// real storage and asserts the published lifecycle events.
func TestBookingLifecycle_EndToEnd(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupMarketplaceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	serviceID, providerID := seedActiveService(t, infra.DB, 40)
	userID := uuid.New()
	date := time.Now().UTC().Add(96 * time.Hour).Format("2006-01-02")

	created, err := stack.Service.CreateBooking(context.Background(), userID, application.CreateBookingRequest{
		ServiceID:   serviceID,
		BookingDate: date,
		StartTime:   "09:00",
		EndTime:     "11:00",
		Duration:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status)
	assert.InDelta(t, 80.0, created.TotalAmount, 1e-9)

	// Overlapping second booking for the same slot is refused.
	_, err = stack.Service.CreateBooking(context.Background(), userID, application.CreateBookingRequest{
		ServiceID:   serviceID,
		BookingDate: date,
		StartTime:   "10:00",
		EndTime:     "12:00",
		Duration:    2,
	})
	require.Error(t, err)

	accepted, err := stack.Service.AcceptBooking(context.Background(), created.ID, providerID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", accepted.Status)

	// More than 48h out: cancellation is free and refunds in full.
	cancelled, err := stack.Service.CancelBooking(context.Background(), created.ID, userID, auth.RoleUser, "change of plans")
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancellationFee)
	assert.Zero(t, *cancelled.CancellationFee)
	require.NotNil(t, cancelled.RefundAmount)
	assert.InDelta(t, 80.0, *cancelled.RefundAmount, 1e-9)

	ce := consumeOneEvent(t, infra.KafkaBrokers, application.TopicBookingEvents,
		application.EventBookingCancelled, 15*time.Second)
	var evt application.BookingCancelledEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, created.ID, evt.BookingID)
	assert.Equal(t, "user", evt.CancelledBy)
	assert.InDelta(t, 80.0, evt.RefundAmount, 1e-9)
}

// TestSlotExclusionConstraint_RaceLoser exercises the storage-level overlap
// guard directly: the second insert bypasses the availability check entirely
// and must still be rejected by the bookings table itself.
func TestSlotExclusionConstraint_RaceLoser(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	repo := repository.NewGormBookingRepository(infra.DB)
	serviceID := uuid.New()
	date := time.Now().UTC().Add(72 * time.Hour)

	newSlot := func(start, end string) *bookingDomain.Booking {
		startTOD, err := bookingDomain.ParseTimeOfDay(start)
		require.NoError(t, err)
		endTOD, err := bookingDomain.ParseTimeOfDay(end)
		require.NoError(t, err)
		bk, err := bookingDomain.NewBooking(
			uuid.New(), serviceID, uuid.New(),
			date, startTOD, endTOD,
			2, 50, "USD", "",
		)
		require.NoError(t, err)
		return bk
	}

	winner := newSlot("10:00", "12:00")
	require.NoError(t, repo.Save(context.Background(), winner))

	err := repo.Save(context.Background(), newSlot("11:00", "13:00"))
	var slotErr *domain.SlotUnavailableError
	require.ErrorAs(t, err, &slotErr, "overlapping insert must hit the exclusion constraint")

	// Half-open windows: back-to-back bookings share a boundary minute.
	require.NoError(t, repo.Save(context.Background(), newSlot("12:00", "14:00")))

	// A cancelled booking stops blocking its slot.
	require.NoError(t, infra.DB.Exec(`UPDATE bookings SET status = 'cancelled' WHERE id = ?`, winner.ID()).Error)
	require.NoError(t, repo.Save(context.Background(), newSlot("10:00", "12:00")))
}

// TestCreateBooking_ConcurrentRace fires racing creations for one slot
// through the full service; exactly one commits and every loser surfaces
// as slot unavailable, whichever guard catches it.
func TestCreateBooking_ConcurrentRace(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupMarketplaceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	serviceID, _ := seedActiveService(t, infra.DB, 50)
	req := application.CreateBookingRequest{
		ServiceID:   serviceID,
		BookingDate: time.Now().UTC().Add(96 * time.Hour).Format("2006-01-02"),
		StartTime:   "09:00",
		EndTime:     "11:00",
		Duration:    2,
	}

	results := make([]error, 4)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := stack.Service.CreateBooking(context.Background(), uuid.New(), req)
			results[i] = err
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		var slotErr *domain.SlotUnavailableError
		assert.ErrorAs(t, err, &slotErr)
	}
	assert.Equal(t, 1, winners, "exactly one racing creation commits")
}
