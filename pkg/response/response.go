package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookora/service-marketplace/pkg/domain"
)

// Envelope is the uniform JSON response shape: {success, data|error}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a stable error kind alongside a human-readable message.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PaginatedData wraps a page of items for list responses.
type PaginatedData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with a page of items.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    PaginatedData{Items: items, Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 validation response.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: "validation", Message: message},
	})
}

// Error maps a domain error to its HTTP status and writes the envelope.
// Unrecognized errors are reported as transient repository failures so
// callers know a retry is safe.
func Error(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		forbiddenErr  *domain.ForbiddenError
		unauthorized  *domain.UnauthorizedError
		transitionErr *domain.InvalidTransitionError
		slotErr       *domain.SlotUnavailableError
		paymentErr    *domain.PaymentVerificationError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		write(c, http.StatusBadRequest, "validation", validationErr.Message)
	case errors.As(err, &notFoundErr):
		write(c, http.StatusNotFound, "not_found", notFoundErr.Error())
	case errors.As(err, &unauthorized):
		write(c, http.StatusUnauthorized, "unauthorized", unauthorized.Message)
	case errors.As(err, &forbiddenErr):
		write(c, http.StatusForbidden, "forbidden", forbiddenErr.Message)
	case errors.As(err, &transitionErr):
		write(c, http.StatusConflict, "invalid_transition", transitionErr.Error())
	case errors.As(err, &slotErr):
		write(c, http.StatusConflict, "slot_unavailable", slotErr.Message)
	case errors.As(err, &paymentErr):
		write(c, http.StatusBadRequest, "payment_verification_failed", paymentErr.Message)
	case errors.As(err, &conflictErr):
		write(c, http.StatusConflict, "conflict", conflictErr.Message)
	default:
		write(c, http.StatusInternalServerError, "transient_repository_error", "temporary storage failure, retry may succeed")
	}
}

func write(c *gin.Context, status int, kind, message string) {
	c.JSON(status, Envelope{Success: false, Error: &ErrorBody{Kind: kind, Message: message}})
}
