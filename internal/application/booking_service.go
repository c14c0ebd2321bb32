package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/bookora/service-marketplace/internal/domain/booking"
	serviceDomain "github.com/bookora/service-marketplace/internal/domain/service"
	"github.com/bookora/service-marketplace/internal/payment"
	"github.com/bookora/service-marketplace/pkg/auth"
	"github.com/bookora/service-marketplace/pkg/domain"
	"github.com/bookora/service-marketplace/pkg/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ServiceID       uuid.UUID `json:"service_id" binding:"required"`
	BookingDate     string    `json:"booking_date" binding:"required"`
	StartTime       string    `json:"start_time" binding:"required"`
	EndTime         string    `json:"end_time" binding:"required"`
	Duration        float64   `json:"duration" binding:"required"`
	SpecialRequests string    `json:"special_requests"`
}

// ListBookingsParams are the typed listing options accepted from clients.
type ListBookingsParams struct {
	Statuses        []string
	PaymentStatuses []string
	DateFrom        string
	DateTo          string
	SortBy          string
	SortDesc        bool
	Page            int
	Limit           int
}

// NoteDTO is the response representation of a note entry.
type NoteDTO struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingDTO is the response representation of a booking rating.
type RatingDTO struct {
	Score   int       `json:"score"`
	Comment string    `json:"comment"`
	RatedAt time.Time `json:"rated_at"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	ServiceID       uuid.UUID  `json:"service_id"`
	ProviderID      uuid.UUID  `json:"provider_id"`
	BookingDate     string     `json:"booking_date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	Duration        float64    `json:"duration"`
	Status          string     `json:"status"`
	TotalAmount     float64    `json:"total_amount"`
	Currency        string     `json:"currency"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentOrderID  string     `json:"payment_order_id,omitempty"`
	SpecialRequests string     `json:"special_requests,omitempty"`
	CancelledBy     string     `json:"cancelled_by,omitempty"`
	CancelReason    string     `json:"cancellation_reason,omitempty"`
	CancellationFee *float64   `json:"cancellation_fee,omitempty"`
	RefundAmount    *float64   `json:"refund_amount,omitempty"`
	Rating          *RatingDTO `json:"rating,omitempty"`
	UserNotes       []NoteDTO  `json:"user_notes,omitempty"`
	ProviderNotes   []NoteDTO  `json:"provider_notes,omitempty"`
	AdminNotes      []NoteDTO  `json:"admin_notes,omitempty"`
	IsUpcoming      bool       `json:"is_upcoming"`
	IsPast          bool       `json:"is_past"`
	CanBeCancelled  bool       `json:"can_be_cancelled"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PaymentOrderDTO is returned when a gateway order is created for a booking.
type PaymentOrderDTO struct {
	BookingID         uuid.UUID `json:"booking_id"`
	Gateway           string    `json:"gateway"`
	OrderID           string    `json:"order_id"`
	ProviderReference string    `json:"provider_reference"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings   int64            `json:"total_bookings"`
	AwaitingPayment int64            `json:"awaiting_payment"`
	ByStatus        map[string]int64 `json:"by_status"`
}

// BookingService is the lifecycle engine: it owns status transitions,
// availability-guarded creation and fee/refund computation, delegating
// persistence to the repositories.
type BookingService struct {
	bookings     bookingDomain.BookingRepository
	services     serviceDomain.ServiceRepository
	availability *bookingDomain.AvailabilityChecker
	policy       bookingDomain.CancellationPolicy
	clock        bookingDomain.Clock
	processor    payment.Processor
	producer     *kafka.Producer
	logger       *zap.Logger
}

// NewBookingService creates a BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	services serviceDomain.ServiceRepository,
	availability *bookingDomain.AvailabilityChecker,
	policy bookingDomain.CancellationPolicy,
	clock bookingDomain.Clock,
	processor payment.Processor,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		services:     services,
		availability: availability,
		policy:       policy,
		clock:        clock,
		processor:    processor,
		producer:     producer,
		logger:       logger,
	}
}

// CreateBooking validates the slot and creates a pending booking with the
// total amount derived from the service's unit price.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	date, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, domain.NewValidationError("booking_date must be an ISO-8601 calendar date")
	}
	start, err := bookingDomain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, domain.NewValidationError("start_time must be HH:MM")
	}
	end, err := bookingDomain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, domain.NewValidationError("end_time must be HH:MM")
	}

	svc, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("service lookup for booking creation: %w", err)
	}
	if !svc.IsActive() {
		return nil, domain.NewValidationError("service is not accepting bookings")
	}

	free, err := s.availability.IsAvailable(ctx, svc.ID(), date, start, end, nil)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, domain.NewSlotUnavailableError("requested time slot is already booked")
	}

	bk, err := bookingDomain.NewBooking(
		userID, svc.ID(), svc.ProviderID(),
		date, start, end, req.Duration,
		svc.UnitPrice(), svc.Currency(), req.SpecialRequests,
	)
	if err != nil {
		return nil, err
	}

	// Save carries the conflict guard: a racing creation for an overlapping
	// slot loses here with a SlotUnavailableError.
	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, err
	}

	evt := BookingCreatedEvent{
		BookingID:   bk.ID(),
		UserID:      bk.UserID(),
		ServiceID:   bk.ServiceID(),
		ProviderID:  bk.ProviderID(),
		BookingDate: bk.Date(),
		StartTime:   bk.Start().String(),
		EndTime:     bk.End().String(),
		TotalAmount: bk.TotalAmount(),
		Currency:    bk.Currency(),
		OccurredAt:  s.clock.Now(),
	}
	s.publishEvent(ctx, TopicBookingEvents, EventBookingCreated, evt)

	return s.toDTO(bk), nil
}

// AcceptBooking confirms a pending booking. Provider only.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, EventBookingConfirmed, func(bk *bookingDomain.Booking) error {
		return bk.Accept(actorID)
	})
}

// RejectBooking cancels a pending booking at the provider's initiative with a
// full refund.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Reject(actorID, reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.requestRefundIfPaid(ctx, bk)
	s.publishCancelled(ctx, bk)
	return s.toDTO(bk), nil
}

// StartBooking moves a confirmed booking to in_progress. Provider only.
func (s *BookingService) StartBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, EventBookingStarted, func(bk *bookingDomain.Booking) error {
		return bk.StartService(actorID)
	})
}

// CompleteBooking marks a confirmed or in-progress booking completed.
// Provider only.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, EventBookingCompleted, func(bk *bookingDomain.Booking) error {
		return bk.Complete(actorID)
	})
}

// MarkNoShow records that the user did not show up. Provider only.
func (s *BookingService) MarkNoShow(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, EventBookingNoShow, func(bk *bookingDomain.Booking) error {
		return bk.MarkNoShow(actorID)
	})
}

// CancelBooking cancels a booking on behalf of its user, its provider or an
// admin. The fee follows the active cancellation policy; the refund is
// always total minus fee. A reason is required for provider- and
// admin-initiated cancellation and optional for the owning user.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, role auth.Role, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var by bookingDomain.CancelActor
	switch role {
	case auth.RoleAdmin:
		by = bookingDomain.CancelledByAdmin
	case auth.RoleProvider:
		if bk.ProviderID() != actorID {
			return nil, domain.NewForbiddenError("booking does not belong to this provider")
		}
		by = bookingDomain.CancelledByProvider
	case auth.RoleUser:
		if bk.UserID() != actorID {
			return nil, domain.NewForbiddenError("booking does not belong to this user")
		}
		by = bookingDomain.CancelledByUser
	default:
		return nil, domain.NewForbiddenError("unknown role cannot cancel bookings")
	}

	if by != bookingDomain.CancelledByUser && strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("cancellation reason is required")
	}

	fee, err := s.policy.FeeFor(bk, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(by, reason, fee); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.requestRefundIfPaid(ctx, bk)
	s.publishCancelled(ctx, bk)
	return s.toDTO(bk), nil
}

// RateBooking sets a one-time rating on a completed booking and recomputes
// the service's aggregate rating.
func (s *BookingService) RateBooking(ctx context.Context, bookingID, actorID uuid.UUID, score int, comment string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Rate(actorID, score, comment); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	average, count, err := s.bookings.RatingSummary(ctx, bk.ServiceID())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize service ratings: %w", err)
	}
	if err := s.services.UpdateAverageRating(ctx, bk.ServiceID(), average, count); err != nil {
		return nil, fmt.Errorf("failed to update service rating aggregate: %w", err)
	}

	evt := BookingRatedEvent{
		BookingID:  bk.ID(),
		ServiceID:  bk.ServiceID(),
		Score:      score,
		OccurredAt: s.clock.Now(),
	}
	s.publishEvent(ctx, TopicBookingEvents, EventBookingRated, evt)

	return s.toDTO(bk), nil
}

// AddNote appends a note to the role-scoped list. Users and providers may
// only annotate their own bookings.
func (s *BookingService) AddNote(ctx context.Context, bookingID, actorID uuid.UUID, role auth.Role, text string) (*BookingDTO, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("note text is required")
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch role {
	case auth.RoleAdmin:
		bk.AddAdminNote(text)
	case auth.RoleProvider:
		if bk.ProviderID() != actorID {
			return nil, domain.NewForbiddenError("booking does not belong to this provider")
		}
		bk.AddProviderNote(text)
	case auth.RoleUser:
		if bk.UserID() != actorID {
			return nil, domain.NewForbiddenError("booking does not belong to this user")
		}
		bk.AddUserNote(text)
	default:
		return nil, domain.NewForbiddenError("unknown role cannot add notes")
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}
	return s.toDTO(bk), nil
}

// GetBooking retrieves a single booking, visible only to its user, its
// provider or an admin.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID, role auth.Role) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != auth.RoleAdmin && bk.UserID() != actorID && bk.ProviderID() != actorID {
		return nil, domain.NewForbiddenError("booking is not visible to this actor")
	}
	return s.toDTO(bk), nil
}

// ListBookings lists bookings scoped to the actor: users see their own,
// providers see bookings on their services.
func (s *BookingService) ListBookings(ctx context.Context, actorID uuid.UUID, role auth.Role, params ListBookingsParams) (*domain.PaginatedResult[BookingDTO], error) {
	filter, err := buildFilter(params)
	if err != nil {
		return nil, err
	}

	switch role {
	case auth.RoleProvider:
		filter.Where(bookingDomain.FieldProviderID, bookingDomain.OpEq, actorID)
	default:
		filter.Where(bookingDomain.FieldUserID, bookingDomain.OpEq, actorID)
	}

	return s.queryPage(ctx, filter)
}

// ListAllBookings lists bookings across the marketplace (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, params ListBookingsParams) (*domain.PaginatedResult[BookingDTO], error) {
	filter, err := buildFilter(params)
	if err != nil {
		return nil, err
	}
	return s.queryPage(ctx, filter)
}

// GetBookingStats returns aggregate booking counts by status plus the number
// of open bookings still awaiting payment (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	unpaid := bookingDomain.NewFilter().
		Where(bookingDomain.FieldPaymentStatus, bookingDomain.OpEq, string(bookingDomain.PaymentPending)).
		Where(bookingDomain.FieldStatus, bookingDomain.OpIn, []string{
			string(bookingDomain.StatusPending),
			string(bookingDomain.StatusConfirmed),
			string(bookingDomain.StatusInProgress),
		})
	awaiting, err := s.bookings.CountByFilter(ctx, unpaid)
	if err != nil {
		return nil, fmt.Errorf("failed to count unpaid bookings: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, AwaitingPayment: awaiting, ByStatus: counts}, nil
}

// DeleteBooking removes a booking record. Administrative override only.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	return s.bookings.DeleteByID(ctx, bookingID)
}

// --- Payments ---

// InitiatePayment creates a gateway order for the booking's total amount.
// Only the owning user may pay, and only while the payment is pending.
func (s *BookingService) InitiatePayment(ctx context.Context, bookingID, actorID uuid.UUID) (*PaymentOrderDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != actorID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	if bk.PaymentStatus() != bookingDomain.PaymentPending {
		return nil, domain.NewValidationError("booking payment is not pending")
	}
	if bk.Status().IsTerminal() {
		return nil, domain.NewValidationError("cannot pay for a closed booking")
	}

	order, err := s.processor.CreateOrder(ctx, bk.TotalAmount(), bk.Currency(), map[string]string{
		"booking_id": bk.ID().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("payment order creation failed: %w", err)
	}

	bk.SetPaymentOrder(order.OrderID, order.ProviderReference)
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	return &PaymentOrderDTO{
		BookingID:         bk.ID(),
		Gateway:           s.processor.Name(),
		OrderID:           order.OrderID,
		ProviderReference: order.ProviderReference,
		Amount:            bk.TotalAmount(),
		Currency:          bk.Currency(),
	}, nil
}

// VerifyPayment checks the gateway signature for a completed checkout and
// marks the payment captured. Replays are no-ops.
func (s *BookingService) VerifyPayment(ctx context.Context, bookingID uuid.UUID, orderID, paymentRef, signature string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.PaymentOrderID() != orderID {
		return nil, domain.NewPaymentVerificationError("order does not match this booking")
	}
	if !s.processor.Verify(orderID, paymentRef, signature) {
		return nil, domain.NewPaymentVerificationError("payment signature mismatch")
	}

	if bk.ApplyPaymentCaptured(paymentRef) {
		bk.IncrementVersion()
		if err := s.bookings.Update(ctx, bk); err != nil {
			return nil, err
		}
	}
	return s.toDTO(bk), nil
}

// ApplyPaymentEvent applies a verified gateway event to the booking's payment
// status. Booking status is never advanced from a payment event; re-applied
// events leave the record unchanged.
func (s *BookingService) ApplyPaymentEvent(ctx context.Context, eventType string, bookingID uuid.UUID, paymentRef string, amount float64) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	var changed bool
	switch eventType {
	case EventPaymentCaptured:
		changed = bk.ApplyPaymentCaptured(paymentRef)
	case EventPaymentFailed:
		changed = bk.ApplyPaymentFailed()
	case EventRefundProcessed:
		changed = bk.ApplyRefundProcessed(amount)
	default:
		return domain.NewValidationError(fmt.Sprintf("unknown payment event type: %s", eventType))
	}

	if !changed {
		s.logger.Debug("payment event already applied",
			zap.String("booking_id", bookingID.String()),
			zap.String("event_type", eventType),
		)
		return nil
	}

	bk.IncrementVersion()
	return s.bookings.Update(ctx, bk)
}

// --- Helpers ---

func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, eventType string, apply func(*bookingDomain.Booking) error) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := apply(bk); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := BookingStatusEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		ProviderID: bk.ProviderID(),
		Status:     string(bk.Status()),
		OccurredAt: s.clock.Now(),
	}
	s.publishEvent(ctx, TopicBookingEvents, eventType, evt)

	return s.toDTO(bk), nil
}

func (s *BookingService) queryPage(ctx context.Context, filter *bookingDomain.Filter) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = *s.toDTO(bk)
	}
	result := domain.NewPaginatedResult(dtos, total, filter.Page, filter.Limit)
	return &result, nil
}

// requestRefundIfPaid asks the gateway to return the refundable amount of an
// already-captured payment. The payment status itself only changes when the
// gateway's refund.processed event arrives.
func (s *BookingService) requestRefundIfPaid(ctx context.Context, bk *bookingDomain.Booking) {
	if bk.PaymentStatus() != bookingDomain.PaymentPaid || bk.RefundAmount() == nil || *bk.RefundAmount() <= 0 {
		return
	}
	if _, err := s.processor.Refund(ctx, bk.PaymentRef(), *bk.RefundAmount(), bk.CancelReason()); err != nil {
		s.logger.Error("refund request failed",
			zap.String("booking_id", bk.ID().String()),
			zap.Float64("amount", *bk.RefundAmount()),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publishCancelled(ctx context.Context, bk *bookingDomain.Booking) {
	var fee, refund float64
	if bk.CancellationFee() != nil {
		fee = *bk.CancellationFee()
	}
	if bk.RefundAmount() != nil {
		refund = *bk.RefundAmount()
	}
	evt := BookingCancelledEvent{
		BookingID:       bk.ID(),
		UserID:          bk.UserID(),
		ProviderID:      bk.ProviderID(),
		CancelledBy:     string(bk.CancelledBy()),
		Reason:          bk.CancelReason(),
		CancellationFee: fee,
		RefundAmount:    refund,
		OccurredAt:      s.clock.Now(),
	}
	s.publishEvent(ctx, TopicBookingEvents, EventBookingCancelled, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent("service-marketplace", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func buildFilter(params ListBookingsParams) (*bookingDomain.Filter, error) {
	filter := bookingDomain.NewFilter().Paginate(params.Page, params.Limit)

	if len(params.Statuses) > 0 {
		for _, raw := range params.Statuses {
			if _, err := bookingDomain.ParseBookingStatus(raw); err != nil {
				return nil, domain.NewValidationError(err.Error())
			}
		}
		filter.Where(bookingDomain.FieldStatus, bookingDomain.OpIn, params.Statuses)
	}
	if len(params.PaymentStatuses) > 0 {
		for _, raw := range params.PaymentStatuses {
			if _, err := bookingDomain.ParsePaymentStatus(raw); err != nil {
				return nil, domain.NewValidationError(err.Error())
			}
		}
		filter.Where(bookingDomain.FieldPaymentStatus, bookingDomain.OpIn, params.PaymentStatuses)
	}
	if params.DateFrom != "" {
		from, err := time.Parse("2006-01-02", params.DateFrom)
		if err != nil {
			return nil, domain.NewValidationError("date_from must be an ISO-8601 calendar date")
		}
		filter.Where(bookingDomain.FieldBookingDate, bookingDomain.OpGte, from)
	}
	if params.DateTo != "" {
		to, err := time.Parse("2006-01-02", params.DateTo)
		if err != nil {
			return nil, domain.NewValidationError("date_to must be an ISO-8601 calendar date")
		}
		filter.Where(bookingDomain.FieldBookingDate, bookingDomain.OpLte, to)
	}

	sortField := bookingDomain.FieldCreatedAt
	sortDesc := true
	if params.SortBy != "" {
		sortField = bookingDomain.FilterField(params.SortBy)
		sortDesc = params.SortDesc
	}
	filter.SortBy(sortField, sortDesc)

	if err := filter.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	return filter, nil
}

func (s *BookingService) toDTO(bk *bookingDomain.Booking) *BookingDTO {
	now := s.clock.Now()

	dto := &BookingDTO{
		ID:              bk.ID(),
		UserID:          bk.UserID(),
		ServiceID:       bk.ServiceID(),
		ProviderID:      bk.ProviderID(),
		BookingDate:     bk.Date().Format("2006-01-02"),
		StartTime:       bk.Start().String(),
		EndTime:         bk.End().String(),
		Duration:        bk.Duration(),
		Status:          string(bk.Status()),
		TotalAmount:     bk.TotalAmount(),
		Currency:        bk.Currency(),
		PaymentStatus:   string(bk.PaymentStatus()),
		PaymentOrderID:  bk.PaymentOrderID(),
		SpecialRequests: bk.SpecialRequests(),
		CancelledBy:     string(bk.CancelledBy()),
		CancelReason:    bk.CancelReason(),
		CancellationFee: bk.CancellationFee(),
		RefundAmount:    bk.RefundAmount(),
		UserNotes:       toNoteDTOs(bk.UserNotes()),
		ProviderNotes:   toNoteDTOs(bk.ProviderNotes()),
		AdminNotes:      toNoteDTOs(bk.AdminNotes()),
		IsUpcoming:      bk.IsUpcoming(now),
		IsPast:          bk.IsPast(now),
		CanBeCancelled:  bk.CanBeCancelled(now),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
	if r := bk.Rating(); r != nil {
		dto.Rating = &RatingDTO{Score: r.Score, Comment: r.Comment, RatedAt: r.RatedAt}
	}
	return dto
}

func toNoteDTOs(notes []bookingDomain.Note) []NoteDTO {
	if len(notes) == 0 {
		return nil
	}
	out := make([]NoteDTO, len(notes))
	for i, n := range notes {
		out[i] = NoteDTO{Text: n.Text, CreatedAt: n.CreatedAt}
	}
	return out
}
