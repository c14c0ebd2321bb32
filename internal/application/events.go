package application

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking lifecycle event types published to booking.events.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
	EventBookingStarted   = "booking.started"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingNoShow    = "booking.no_show"
	EventBookingRated     = "booking.rated"
)

// Payment event types consumed from payment.events. They mirror the webhook
// event names so both delivery paths share one handler.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
)

// BookingCreatedEvent announces a new pending booking.
type BookingCreatedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	UserID      uuid.UUID `json:"user_id"`
	ServiceID   uuid.UUID `json:"service_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	BookingDate time.Time `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingStatusEvent announces a status transition.
type BookingStatusEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent announces a cancellation with its fee split.
type BookingCancelledEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	UserID          uuid.UUID `json:"user_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	CancelledBy     string    `json:"cancelled_by"`
	Reason          string    `json:"reason,omitempty"`
	CancellationFee float64   `json:"cancellation_fee"`
	RefundAmount    float64   `json:"refund_amount"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingRatedEvent announces a rating on a completed booking.
type BookingRatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	Score      int       `json:"score"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentEvent is the payload of payment.events messages.
type PaymentEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OrderID    string    `json:"order_id"`
	PaymentRef string    `json:"payment_ref"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}
