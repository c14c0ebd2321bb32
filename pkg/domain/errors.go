package domain

import "fmt"

// ValidationError indicates malformed or out-of-range input rejected before
// any state change.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NotFoundError indicates the referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource and identifier.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ForbiddenError indicates the actor lacks the role or ownership required for
// the operation.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NewForbiddenError creates a ForbiddenError with the given message.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// UnauthorizedError indicates missing or invalid credentials.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// NewUnauthorizedError creates an UnauthorizedError with the given message.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// InvalidTransitionError indicates a status change not permitted by the
// booking state machine.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// NewInvalidTransitionError creates an InvalidTransitionError naming the
// current and requested status.
func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// SlotUnavailableError indicates the requested time window conflicts with an
// existing booking, including the loser of a concurrent-create race.
type SlotUnavailableError struct {
	Message string
}

func (e *SlotUnavailableError) Error() string { return e.Message }

// NewSlotUnavailableError creates a SlotUnavailableError with the given message.
func NewSlotUnavailableError(message string) *SlotUnavailableError {
	return &SlotUnavailableError{Message: message}
}

// PaymentVerificationError indicates a signature mismatch or processor
// rejection. Events carrying an invalid signature are never applied.
type PaymentVerificationError struct {
	Message string
}

func (e *PaymentVerificationError) Error() string { return e.Message }

// NewPaymentVerificationError creates a PaymentVerificationError with the given message.
func NewPaymentVerificationError(message string) *PaymentVerificationError {
	return &PaymentVerificationError{Message: message}
}

// ConflictError indicates a concurrent modification detected by optimistic
// locking.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}
