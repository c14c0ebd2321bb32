package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyHMAC(t *testing.T) {
	secret := []byte("whsec_test")
	message := []byte("order_123|pay_456")

	sig := signHMAC(secret, message)
	assert.True(t, verifyHMAC(secret, message, sig))
	assert.False(t, verifyHMAC(secret, message, sig+"00"), "tampered signature rejected")
	assert.False(t, verifyHMAC([]byte("other"), message, sig), "wrong secret rejected")
	assert.False(t, verifyHMAC(secret, []byte("order_123|pay_999"), sig), "tampered payload rejected")
	assert.False(t, verifyHMAC(secret, message, ""), "empty signature rejected")
}

func TestProcessor_VerifyCheckout(t *testing.T) {
	cfg := Config{Gateway: "razorpay", KeyID: "rzp_test", KeySecret: "secret", WebhookSecret: "whsec"}
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	assert.Equal(t, "razorpay", p.Name())

	sig := signHMAC([]byte("secret"), []byte("order_1|pay_1"))
	assert.True(t, p.Verify("order_1", "pay_1", sig))
	assert.False(t, p.Verify("order_1", "pay_2", sig))
	assert.False(t, p.Verify("order_2", "pay_1", sig))
}

func TestProcessor_VerifyWebhook(t *testing.T) {
	cfg := Config{Gateway: "stripe", KeySecret: "sk_test", WebhookSecret: "whsec"}
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Name())

	payload := []byte(`{"type":"payment.captured","booking_id":"x"}`)
	sig := signHMAC([]byte("whsec"), payload)
	assert.True(t, p.VerifyWebhook(payload, sig))
	assert.False(t, p.VerifyWebhook([]byte(`{"type":"refund.processed"}`), sig))
}

func TestNewProcessor_UnknownGateway(t *testing.T) {
	_, err := NewProcessor(Config{Gateway: "paypal"})
	assert.Error(t, err)
}

func TestParseWebhook(t *testing.T) {
	p := NewRazorpayProcessor(Config{})

	evt, err := p.ParseWebhook([]byte(`{
		"type": "payment.captured",
		"order_id": "order_42",
		"payment_ref": "pay_42",
		"booking_id": "6b9f74a4-1f25-4a86-8a5e-6cf9e29a3a11",
		"amount": 120.5,
		"currency": "USD"
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentCaptured, evt.Type)
	assert.Equal(t, "pay_42", evt.PaymentRef)
	assert.InDelta(t, 120.5, evt.Amount, 1e-9)

	_, err = p.ParseWebhook([]byte(`{"type":"payment.exploded"}`))
	assert.Error(t, err, "unknown event type rejected")

	_, err = p.ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}
