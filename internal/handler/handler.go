package handler

import (
	"github.com/bookora/service-marketplace/pkg/domain"
)

var (
	errUnauthenticated         = domain.NewUnauthorizedError("unauthenticated")
	errInvalidWebhookSignature = domain.NewPaymentVerificationError("webhook signature mismatch")
)
