package booking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookora/service-marketplace/pkg/domain"
)

const maxReasonLength = 200

// Rating is the score and comment a user leaves on a completed booking.
// It can be set exactly once.
type Rating struct {
	Score   int       `json:"score"`
	Comment string    `json:"comment"`
	RatedAt time.Time `json:"rated_at"`
}

// Note is a single timestamped entry in one of the booking's note lists.
type Note struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Booking is the aggregate root for the booking domain. The user, service and
// provider references are non-owning; the provider id is a snapshot taken at
// creation time for authorization checks and is intentionally stale if the
// service is later reassigned.
type Booking struct {
	id         uuid.UUID
	userID     uuid.UUID
	serviceID  uuid.UUID
	providerID uuid.UUID

	date     time.Time
	start    TimeOfDay
	end      TimeOfDay
	duration float64

	status          BookingStatus
	totalAmount     float64
	currency        string
	paymentStatus   PaymentStatus
	paymentOrderID  string
	paymentRef      string
	specialRequests string

	cancelledBy     CancelActor
	cancelReason    string
	cancellationFee *float64
	refundAmount    *float64

	rating *Rating

	userNotes     []Note
	providerNotes []Note
	adminNotes    []Note

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a Booking in status=pending with the total amount
// computed from the service's unit price and the requested duration.
func NewBooking(
	userID, serviceID, providerID uuid.UUID,
	date time.Time,
	start, end TimeOfDay,
	duration float64,
	unitPrice float64,
	currency string,
	specialRequests string,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if serviceID == uuid.Nil {
		return nil, domain.NewValidationError("service ID is required")
	}
	if providerID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if date.IsZero() {
		return nil, domain.NewValidationError("booking date is required")
	}
	if !start.Before(end) {
		return nil, domain.NewValidationError("start time must be before end time")
	}
	if duration < 0.5 || duration > 24 {
		return nil, domain.NewValidationError("duration must be between 0.5 and 24 hours")
	}
	if unitPrice < 0 {
		return nil, domain.NewValidationError("unit price cannot be negative")
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		userID:          userID,
		serviceID:       serviceID,
		providerID:      providerID,
		date:            NormalizeDate(date),
		start:           start,
		end:             end,
		duration:        duration,
		status:          StatusPending,
		totalAmount:     round2(unitPrice * duration),
		currency:        currency,
		paymentStatus:   PaymentPending,
		specialRequests: specialRequests,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, userID, serviceID, providerID uuid.UUID,
	date time.Time,
	start, end TimeOfDay,
	duration float64,
	status BookingStatus,
	totalAmount float64,
	currency string,
	paymentStatus PaymentStatus,
	paymentOrderID, paymentRef string,
	specialRequests string,
	cancelledBy CancelActor,
	cancelReason string,
	cancellationFee, refundAmount *float64,
	rating *Rating,
	userNotes, providerNotes, adminNotes []Note,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		userID:          userID,
		serviceID:       serviceID,
		providerID:      providerID,
		date:            date,
		start:           start,
		end:             end,
		duration:        duration,
		status:          status,
		totalAmount:     totalAmount,
		currency:        currency,
		paymentStatus:   paymentStatus,
		paymentOrderID:  paymentOrderID,
		paymentRef:      paymentRef,
		specialRequests: specialRequests,
		cancelledBy:     cancelledBy,
		cancelReason:    cancelReason,
		cancellationFee: cancellationFee,
		refundAmount:    refundAmount,
		rating:          rating,
		userNotes:       userNotes,
		providerNotes:   providerNotes,
		adminNotes:      adminNotes,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// UserID returns the requesting user's ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// ServiceID returns the booked service's ID.
func (b *Booking) ServiceID() uuid.UUID { return b.serviceID }

// ProviderID returns the provider snapshot captured at creation.
func (b *Booking) ProviderID() uuid.UUID { return b.providerID }

// Date returns the booking's calendar date (midnight UTC).
func (b *Booking) Date() time.Time { return b.date }

// Start returns the wall-clock start time.
func (b *Booking) Start() TimeOfDay { return b.start }

// End returns the wall-clock end time.
func (b *Booking) End() TimeOfDay { return b.end }

// Duration returns the booked duration in hours. It is authoritative for
// price calculation.
func (b *Booking) Duration() float64 { return b.duration }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// TotalAmount returns the total amount charged for the booking.
func (b *Booking) TotalAmount() float64 { return b.totalAmount }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// PaymentOrderID returns the gateway order id, if a payment was initiated.
func (b *Booking) PaymentOrderID() string { return b.paymentOrderID }

// PaymentRef returns the gateway payment reference, if captured.
func (b *Booking) PaymentRef() string { return b.paymentRef }

// SpecialRequests returns the free-text requests given at creation.
func (b *Booking) SpecialRequests() string { return b.specialRequests }

// CancelledBy returns the role tag recorded at cancellation, or "" if not cancelled.
func (b *Booking) CancelledBy() CancelActor { return b.cancelledBy }

// CancelReason returns the cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// CancellationFee returns the fee withheld at cancellation, or nil.
func (b *Booking) CancellationFee() *float64 { return b.cancellationFee }

// RefundAmount returns the amount refunded at cancellation, or nil.
func (b *Booking) RefundAmount() *float64 { return b.refundAmount }

// Rating returns the rating left on the booking, or nil.
func (b *Booking) Rating() *Rating { return b.rating }

// UserNotes returns the user's note list.
func (b *Booking) UserNotes() []Note { return b.userNotes }

// ProviderNotes returns the provider's note list.
func (b *Booking) ProviderNotes() []Note { return b.providerNotes }

// AdminNotes returns the admin note list.
func (b *Booking) AdminNotes() []Note { return b.adminNotes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Derived attributes ---

// StartAt returns the booking's start instant (date + start time, UTC).
func (b *Booking) StartAt() time.Time { return b.start.On(b.date) }

// EndAt returns the booking's end instant (date + end time, UTC).
func (b *Booking) EndAt() time.Time { return b.end.On(b.date) }

// HoursUntilStart returns the number of hours between now and the booking's
// start instant. Negative once the booking has started.
func (b *Booking) HoursUntilStart(now time.Time) float64 {
	return b.StartAt().Sub(now).Hours()
}

// IsUpcoming returns true if the booking is confirmed and starts in the future.
func (b *Booking) IsUpcoming(now time.Time) bool {
	return b.status == StatusConfirmed && b.StartAt().After(now)
}

// IsPast returns true if the booking's end instant is in the past.
func (b *Booking) IsPast(now time.Time) bool {
	return b.EndAt().Before(now)
}

// CanBeCancelled is the penalty-free eligibility guard: confirmed bookings
// more than 24 hours from their start.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	return b.status == StatusConfirmed && b.HoursUntilStart(now) > 24
}

// --- Behavior ---

// Accept transitions the booking from pending to confirmed. Only the
// service's provider may accept.
func (b *Booking) Accept(actorID uuid.UUID) error {
	if actorID != b.providerID {
		return domain.NewForbiddenError("only the service provider can accept a booking")
	}
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.touch()
	return nil
}

// Reject cancels a pending booking at the provider's initiative with a full
// refund: rejection is never the requester's fault, so no fee is withheld.
func (b *Booking) Reject(actorID uuid.UUID, reason string) error {
	if actorID != b.providerID {
		return domain.NewForbiddenError("only the service provider can reject a booking")
	}
	if strings.TrimSpace(reason) == "" {
		return domain.NewValidationError("rejection reason is required")
	}
	if b.status != StatusPending {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	return b.Cancel(CancelledByProvider, reason, 0)
}

// StartService transitions a confirmed booking to in_progress. Provider only.
func (b *Booking) StartService(actorID uuid.UUID) error {
	if actorID != b.providerID {
		return domain.NewForbiddenError("only the service provider can start a booking")
	}
	if !b.status.CanTransitionTo(StatusInProgress) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusInProgress))
	}
	b.status = StatusInProgress
	b.touch()
	return nil
}

// Complete transitions a confirmed or in-progress booking to completed.
// Provider only.
func (b *Booking) Complete(actorID uuid.UUID) error {
	if actorID != b.providerID {
		return domain.NewForbiddenError("only the service provider can complete a booking")
	}
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.touch()
	return nil
}

// MarkNoShow transitions a confirmed booking to no_show. Provider only.
func (b *Booking) MarkNoShow(actorID uuid.UUID) error {
	if actorID != b.providerID {
		return domain.NewForbiddenError("only the service provider can mark a no-show")
	}
	if !b.status.CanTransitionTo(StatusNoShow) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusNoShow))
	}
	b.status = StatusNoShow
	b.touch()
	return nil
}

// Cancel transitions the booking to cancelled, recording who cancelled, the
// reason, the fee withheld and the resulting refund. The fee is computed by
// the caller from the active cancellation policy; refund is always
// totalAmount - fee.
func (b *Booking) Cancel(by CancelActor, reason string, fee float64) error {
	if !by.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid cancellation actor: %s", by))
	}
	if len(reason) > maxReasonLength {
		return domain.NewValidationError(fmt.Sprintf("cancellation reason exceeds %d characters", maxReasonLength))
	}
	if fee < 0 || fee > b.totalAmount {
		return domain.NewValidationError("cancellation fee must be between 0 and the total amount")
	}
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}

	refund := round2(b.totalAmount - fee)
	fee = round2(fee)
	b.status = StatusCancelled
	b.cancelledBy = by
	b.cancelReason = reason
	b.cancellationFee = &fee
	b.refundAmount = &refund
	b.touch()
	return nil
}

// Rate sets the rating on a completed booking. Only the requesting user may
// rate, and only once.
func (b *Booking) Rate(actorID uuid.UUID, score int, comment string) error {
	if actorID != b.userID {
		return domain.NewForbiddenError("only the booking's user can rate it")
	}
	if b.status != StatusCompleted {
		return domain.NewValidationError("only completed bookings can be rated")
	}
	if b.rating != nil {
		return domain.NewValidationError("booking has already been rated")
	}
	if score < 1 || score > 5 {
		return domain.NewValidationError("rating score must be between 1 and 5")
	}
	b.rating = &Rating{Score: score, Comment: comment, RatedAt: time.Now().UTC()}
	b.touch()
	return nil
}

// AddUserNote appends a timestamped note to the user's list.
func (b *Booking) AddUserNote(text string) {
	b.userNotes = append(b.userNotes, Note{Text: text, CreatedAt: time.Now().UTC()})
	b.touch()
}

// AddProviderNote appends a timestamped note to the provider's list.
func (b *Booking) AddProviderNote(text string) {
	b.providerNotes = append(b.providerNotes, Note{Text: text, CreatedAt: time.Now().UTC()})
	b.touch()
}

// AddAdminNote appends a timestamped note to the admin list.
func (b *Booking) AddAdminNote(text string) {
	b.adminNotes = append(b.adminNotes, Note{Text: text, CreatedAt: time.Now().UTC()})
	b.touch()
}

// SetPaymentOrder records the gateway order created for this booking.
func (b *Booking) SetPaymentOrder(orderID, providerRef string) {
	b.paymentOrderID = orderID
	b.paymentRef = providerRef
	b.touch()
}

// ApplyPaymentCaptured marks the payment as paid. Booking status is never
// advanced from a payment event alone. Only a pending or failed payment can
// move to paid; a capture delivered again, including one that arrives after
// a refund has already been processed, is a no-op.
func (b *Booking) ApplyPaymentCaptured(paymentRef string) bool {
	if b.paymentStatus != PaymentPending && b.paymentStatus != PaymentFailed {
		return false
	}
	b.paymentStatus = PaymentPaid
	if paymentRef != "" {
		b.paymentRef = paymentRef
	}
	b.touch()
	return true
}

// ApplyPaymentFailed marks the payment as failed. Only a pending payment can
// fail; a stale failure event never clobbers a captured or refunded payment.
func (b *Booking) ApplyPaymentFailed() bool {
	if b.paymentStatus != PaymentPending {
		return false
	}
	b.paymentStatus = PaymentFailed
	b.touch()
	return true
}

// ApplyRefundProcessed marks the payment as refunded, or partially refunded
// when the refunded amount is less than the total. Only a paid or partially
// refunded payment can move; replays are a no-op.
func (b *Booking) ApplyRefundProcessed(amount float64) bool {
	if b.paymentStatus != PaymentPaid && b.paymentStatus != PaymentPartiallyRefunded {
		return false
	}
	target := PaymentRefunded
	if amount > 0 && amount < b.totalAmount {
		target = PaymentPartiallyRefunded
	}
	if b.paymentStatus == target {
		return false
	}
	b.paymentStatus = target
	b.touch()
	return true
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.touch()
}

func (b *Booking) touch() {
	b.updatedAt = time.Now().UTC()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
