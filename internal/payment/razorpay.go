package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RazorpayProcessor is the Razorpay gateway adapter. Amounts are sent in the
// smallest currency unit, as the Razorpay API requires.
type RazorpayProcessor struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

// NewRazorpayProcessor creates a RazorpayProcessor from config.
func NewRazorpayProcessor(cfg Config) *RazorpayProcessor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayProcessor{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       baseURL,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Name identifies the gateway.
func (p *RazorpayProcessor) Name() string { return "razorpay" }

// CreateOrder creates a Razorpay order for the given amount.
func (p *RazorpayProcessor) CreateOrder(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Order, error) {
	body := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": currency,
		"notes":    metadata,
	}
	var result struct {
		ID      string `json:"id"`
		Receipt string `json:"receipt"`
	}
	if err := p.post(ctx, "/orders", body, &result); err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}
	return &Order{OrderID: result.ID, ProviderReference: result.Receipt}, nil
}

// Verify checks the checkout signature over "orderID|paymentRef".
func (p *RazorpayProcessor) Verify(orderID, paymentRef, signature string) bool {
	message := []byte(orderID + "|" + paymentRef)
	return verifyHMAC([]byte(p.keySecret), message, signature)
}

// Refund refunds a captured payment; a zero amount refunds in full.
func (p *RazorpayProcessor) Refund(ctx context.Context, paymentRef string, amount float64, reason string) (*RefundResult, error) {
	body := map[string]interface{}{
		"notes": map[string]string{"reason": reason},
	}
	if amount > 0 {
		body["amount"] = int64(amount * 100)
	}
	var result struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	}
	if err := p.post(ctx, "/payments/"+paymentRef+"/refund", body, &result); err != nil {
		return nil, fmt.Errorf("razorpay refund failed: %w", err)
	}
	return &RefundResult{RefundID: result.ID, RefundedAmount: float64(result.Amount) / 100}, nil
}

// VerifyWebhook checks the X-Razorpay-Signature over the raw payload.
func (p *RazorpayProcessor) VerifyWebhook(payload []byte, signature string) bool {
	return verifyHMAC([]byte(p.webhookSecret), payload, signature)
}

// ParseWebhook decodes a verified Razorpay webhook payload into the common
// event shape.
func (p *RazorpayProcessor) ParseWebhook(payload []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("failed to parse razorpay webhook: %w", err)
	}
	if !evt.Type.IsValid() {
		return nil, fmt.Errorf("unknown razorpay webhook event type: %s", evt.Type)
	}
	return &evt, nil
}

func (p *RazorpayProcessor) post(ctx context.Context, path string, body, result interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.keyID, p.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("razorpay returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
