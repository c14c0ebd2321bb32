package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookora/service-marketplace/internal/application"
	"github.com/bookora/service-marketplace/internal/payment"
	"github.com/bookora/service-marketplace/pkg/response"
)

// WebhookHandler receives gateway payment webhooks. The raw body signature is
// verified before anything in the payload is trusted.
type WebhookHandler struct {
	service   *application.BookingService
	processor payment.Processor
	logger    *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service *application.BookingService, processor payment.Processor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, processor: processor, logger: logger}
}

// RegisterRoutes registers the webhook route. No auth middleware: the
// gateway authenticates through the body signature instead.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/payments", h.HandlePaymentWebhook)
}

// HandlePaymentWebhook handles POST /webhooks/payments.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read webhook body")
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if signature == "" {
		signature = c.GetHeader("X-Razorpay-Signature")
	}
	if signature == "" {
		signature = c.GetHeader("Stripe-Signature")
	}

	if !h.processor.VerifyWebhook(payload, signature) {
		h.logger.Warn("webhook signature rejected",
			zap.String("gateway", h.processor.Name()),
		)
		response.Error(c, errInvalidWebhookSignature)
		return
	}

	evt, err := h.processor.ParseWebhook(payload)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bookingID, err := uuid.Parse(evt.BookingID)
	if err != nil {
		response.BadRequest(c, "webhook payload has no valid booking ID")
		return
	}

	if err := h.service.ApplyPaymentEvent(c.Request.Context(), string(evt.Type), bookingID, evt.PaymentRef, evt.Amount); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"applied": true})
}
