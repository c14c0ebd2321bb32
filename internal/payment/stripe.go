package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripeProcessor is the Stripe gateway adapter. The Stripe API is
// form-encoded and amounts are quoted in the smallest currency unit.
type StripeProcessor struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

// NewStripeProcessor creates a StripeProcessor from config.
func NewStripeProcessor(cfg Config) *StripeProcessor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1"
	}
	return &StripeProcessor{
		secretKey:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       baseURL,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Name identifies the gateway.
func (p *StripeProcessor) Name() string { return "stripe" }

// CreateOrder creates a payment intent for the given amount.
func (p *StripeProcessor) CreateOrder(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Order, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(amount*100), 10))
	form.Set("currency", strings.ToLower(currency))
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var result struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := p.post(ctx, "/payment_intents", form, &result); err != nil {
		return nil, fmt.Errorf("stripe payment intent creation failed: %w", err)
	}
	return &Order{OrderID: result.ID, ProviderReference: result.ClientSecret}, nil
}

// Verify checks the signature over "orderID|paymentRef".
func (p *StripeProcessor) Verify(orderID, paymentRef, signature string) bool {
	message := []byte(orderID + "|" + paymentRef)
	return verifyHMAC([]byte(p.secretKey), message, signature)
}

// Refund refunds a captured payment; a zero amount refunds in full.
func (p *StripeProcessor) Refund(ctx context.Context, paymentRef string, amount float64, reason string) (*RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentRef)
	if amount > 0 {
		form.Set("amount", strconv.FormatInt(int64(amount*100), 10))
	}
	if reason != "" {
		form.Set("metadata[reason]", reason)
	}

	var result struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	}
	if err := p.post(ctx, "/refunds", form, &result); err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}
	return &RefundResult{RefundID: result.ID, RefundedAmount: float64(result.Amount) / 100}, nil
}

// VerifyWebhook checks the Stripe-Signature over the raw payload.
func (p *StripeProcessor) VerifyWebhook(payload []byte, signature string) bool {
	return verifyHMAC([]byte(p.webhookSecret), payload, signature)
}

// ParseWebhook decodes a verified Stripe webhook payload into the common
// event shape.
func (p *StripeProcessor) ParseWebhook(payload []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("failed to parse stripe webhook: %w", err)
	}
	if !evt.Type.IsValid() {
		return nil, fmt.Errorf("unknown stripe webhook event type: %s", evt.Type)
	}
	return &evt, nil
}

func (p *StripeProcessor) post(ctx context.Context, path string, form url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("stripe returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
