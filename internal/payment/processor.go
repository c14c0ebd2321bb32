package payment

import (
	"context"
	"fmt"
)

// Order is a gateway-side payment order created for a booking.
type Order struct {
	OrderID           string
	ProviderReference string
}

// RefundResult reports a processed refund.
type RefundResult struct {
	RefundID       string
	RefundedAmount float64
}

// EventType names the asynchronous webhook events a gateway delivers.
type EventType string

const (
	EventPaymentCaptured EventType = "payment.captured"
	EventPaymentFailed   EventType = "payment.failed"
	EventRefundProcessed EventType = "refund.processed"
)

// IsValid returns true if the event type is recognized.
func (t EventType) IsValid() bool {
	switch t {
	case EventPaymentCaptured, EventPaymentFailed, EventRefundProcessed:
		return true
	}
	return false
}

// WebhookEvent is a verified, parsed gateway notification. Delivery is
// at-least-once; consumers must treat re-applied events as no-ops.
type WebhookEvent struct {
	Type       EventType `json:"type"`
	OrderID    string    `json:"order_id"`
	PaymentRef string    `json:"payment_ref"`
	BookingID  string    `json:"booking_id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
}

// Processor is the opaque payment-gateway boundary: order creation,
// synchronous verification and refunds. One implementation exists per
// gateway; the active one is selected by configuration.
type Processor interface {
	// Name identifies the gateway (used in webhook routing and logs).
	Name() string

	// CreateOrder creates a gateway order for the given amount.
	CreateOrder(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Order, error)

	// Verify checks the HMAC-SHA256 signature over "orderID|paymentRef"
	// against the shared secret.
	Verify(orderID, paymentRef, signature string) bool

	// Refund refunds the captured payment, fully when amount is zero.
	Refund(ctx context.Context, paymentRef string, amount float64, reason string) (*RefundResult, error)

	// VerifyWebhook checks the gateway's signature over the raw event
	// payload. Events failing verification must be rejected, not applied.
	VerifyWebhook(payload []byte, signature string) bool

	// ParseWebhook decodes a raw (already verified) event payload.
	ParseWebhook(payload []byte) (*WebhookEvent, error)
}

// Config selects and configures the active gateway.
type Config struct {
	Gateway       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

// NewProcessor constructs the configured gateway adapter.
func NewProcessor(cfg Config) (Processor, error) {
	switch cfg.Gateway {
	case "razorpay":
		return NewRazorpayProcessor(cfg), nil
	case "stripe":
		return NewStripeProcessor(cfg), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway: %q", cfg.Gateway)
	}
}
