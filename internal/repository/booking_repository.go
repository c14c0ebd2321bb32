package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	bookingDomain "github.com/bookora/service-marketplace/internal/domain/booking"
	"github.com/bookora/service-marketplace/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	ServiceID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProviderID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	BookingDate     time.Time       `gorm:"type:date;not null;index"`
	StartTime       string          `gorm:"not null;size:5"`
	EndTime         string          `gorm:"not null;size:5"`
	Duration        float64         `gorm:"not null"`
	Status          string          `gorm:"not null;size:20;index"`
	TotalAmount     float64         `gorm:"not null"`
	Currency        string          `gorm:"not null;size:3"`
	PaymentStatus   string          `gorm:"not null;size:25;index"`
	PaymentOrderID  string          `gorm:"size:64"`
	PaymentRef      string          `gorm:"size:128"`
	SpecialRequests string          `gorm:"size:1000"`
	CancelledBy     string          `gorm:"size:20"`
	CancelReason    string          `gorm:"size:200"`
	CancellationFee *float64        `gorm:""`
	RefundAmount    *float64        `gorm:""`
	Rating          json.RawMessage `gorm:"type:jsonb"`
	UserNotes       json.RawMessage `gorm:"type:jsonb"`
	ProviderNotes   json.RawMessage `gorm:"type:jsonb"`
	AdminNotes      json.RawMessage `gorm:"type:jsonb"`
	Version         int64           `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindConflicting returns slot-blocking bookings for the service on the date
// whose window overlaps [start, end). Times compare lexically because they
// are stored as zero-padded HH:MM.
func (r *GormBookingRepository) FindConflicting(ctx context.Context, serviceID uuid.UUID, date time.Time, start, end bookingDomain.TimeOfDay, excludeID *uuid.UUID) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Where("booking_date = ?", bookingDomain.NormalizeDate(date)).
		Where("status IN ?", []string{
			string(bookingDomain.StatusPending),
			string(bookingDomain.StatusConfirmed),
		}).
		Where("start_time < ? AND ? < end_time", end.String(), start.String())
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var models []BookingModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}
	return toDomainBookings(models)
}

// Query retrieves bookings matching a typed filter with the total count.
func (r *GormBookingRepository) Query(ctx context.Context, filter *bookingDomain.Filter) ([]*bookingDomain.Booking, int64, error) {
	base, err := applyConditions(r.db.WithContext(ctx).Model(&BookingModel{}), filter.Conditions)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := base.Order(orderClause(filter.Sort)).
		Offset(filter.Offset()).
		Limit(filter.Limit)

	var models []BookingModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByFilter returns the number of bookings matching a typed filter.
func (r *GormBookingRepository) CountByFilter(ctx context.Context, filter *bookingDomain.Filter) (int64, error) {
	query, err := applyConditions(r.db.WithContext(ctx).Model(&BookingModel{}), filter.Conditions)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// RatingSummary returns the mean score and count of rated bookings for a service.
func (r *GormBookingRepository) RatingSummary(ctx context.Context, serviceID uuid.UUID) (float64, int64, error) {
	type summary struct {
		Average float64
		Count   int64
	}
	var result summary
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("COALESCE(AVG((rating->>'score')::numeric), 0) as average, COUNT(rating) as count").
		Where("service_id = ? AND rating IS NOT NULL", serviceID).
		Scan(&result).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to summarize ratings: %w", err)
	}
	return result.Average, result.Count, nil
}

// Save persists a new booking. A partial unique index on slot-blocking rows
// guards against racing creations for the same slot; the loser's constraint
// violation surfaces as a SlotUnavailableError.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isSlotConflict(err) {
			return domain.NewSlotUnavailableError("requested time slot is already booked")
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the stored version matches the version before
	// IncrementVersion was called.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"payment_status":   model.PaymentStatus,
			"payment_order_id": model.PaymentOrderID,
			"payment_ref":      model.PaymentRef,
			"cancelled_by":     model.CancelledBy,
			"cancel_reason":    model.CancelReason,
			"cancellation_fee": model.CancellationFee,
			"refund_amount":    model.RefundAmount,
			"rating":           model.Rating,
			"user_notes":       model.UserNotes,
			"provider_notes":   model.ProviderNotes,
			"admin_notes":      model.AdminNotes,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// DeleteByID removes a booking. Administrative override only.
func (r *GormBookingRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// --- Filter translation ---

var filterColumns = map[bookingDomain.FilterField]string{
	bookingDomain.FieldUserID:        "user_id",
	bookingDomain.FieldProviderID:    "provider_id",
	bookingDomain.FieldServiceID:     "service_id",
	bookingDomain.FieldStatus:        "status",
	bookingDomain.FieldPaymentStatus: "payment_status",
	bookingDomain.FieldBookingDate:   "booking_date",
	bookingDomain.FieldTotalAmount:   "total_amount",
	bookingDomain.FieldCreatedAt:     "created_at",
}

var filterOperators = map[bookingDomain.FilterOp]string{
	bookingDomain.OpEq:  "=",
	bookingDomain.OpGt:  ">",
	bookingDomain.OpGte: ">=",
	bookingDomain.OpLt:  "<",
	bookingDomain.OpLte: "<=",
}

func applyConditions(query *gorm.DB, conditions []bookingDomain.Condition) (*gorm.DB, error) {
	for _, c := range conditions {
		column, ok := filterColumns[c.Field]
		if !ok {
			return nil, fmt.Errorf("unknown filter field: %s", c.Field)
		}
		if c.Op == bookingDomain.OpIn {
			query = query.Where(column+" IN ?", c.Value)
			continue
		}
		op, ok := filterOperators[c.Op]
		if !ok {
			return nil, fmt.Errorf("unknown filter operator: %s", c.Op)
		}
		query = query.Where(fmt.Sprintf("%s %s ?", column, op), c.Value)
	}
	return query, nil
}

func orderClause(sorts []bookingDomain.SortField) string {
	if len(sorts) == 0 {
		return "created_at DESC"
	}
	parts := make([]string, 0, len(sorts))
	for _, s := range sorts {
		column, ok := filterColumns[s.Field]
		if !ok {
			continue
		}
		direction := "ASC"
		if s.Desc {
			direction = "DESC"
		}
		parts = append(parts, column+" "+direction)
	}
	if len(parts) == 0 {
		return "created_at DESC"
	}
	return strings.Join(parts, ", ")
}

// isSlotConflict reports whether the error is a unique-violation (23505) or
// exclusion-violation (23P01) from the slot conflict guard.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "23P01"
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	var ratingJSON json.RawMessage
	if bk.Rating() != nil {
		data, err := json.Marshal(bk.Rating())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal rating: %w", err)
		}
		ratingJSON = data
	}

	userNotesJSON, err := marshalNotes(bk.UserNotes())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user notes: %w", err)
	}
	providerNotesJSON, err := marshalNotes(bk.ProviderNotes())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider notes: %w", err)
	}
	adminNotesJSON, err := marshalNotes(bk.AdminNotes())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal admin notes: %w", err)
	}

	return &BookingModel{
		ID:              bk.ID(),
		UserID:          bk.UserID(),
		ServiceID:       bk.ServiceID(),
		ProviderID:      bk.ProviderID(),
		BookingDate:     bk.Date(),
		StartTime:       bk.Start().String(),
		EndTime:         bk.End().String(),
		Duration:        bk.Duration(),
		Status:          string(bk.Status()),
		TotalAmount:     bk.TotalAmount(),
		Currency:        bk.Currency(),
		PaymentStatus:   string(bk.PaymentStatus()),
		PaymentOrderID:  bk.PaymentOrderID(),
		PaymentRef:      bk.PaymentRef(),
		SpecialRequests: bk.SpecialRequests(),
		CancelledBy:     string(bk.CancelledBy()),
		CancelReason:    bk.CancelReason(),
		CancellationFee: bk.CancellationFee(),
		RefundAmount:    bk.RefundAmount(),
		Rating:          ratingJSON,
		UserNotes:       userNotesJSON,
		ProviderNotes:   providerNotesJSON,
		AdminNotes:      adminNotesJSON,
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	start, err := bookingDomain.ParseTimeOfDay(m.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored start time: %w", err)
	}
	end, err := bookingDomain.ParseTimeOfDay(m.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored end time: %w", err)
	}

	var rating *bookingDomain.Rating
	if len(m.Rating) > 0 {
		rating = &bookingDomain.Rating{}
		if err := json.Unmarshal(m.Rating, rating); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rating: %w", err)
		}
	}

	userNotes, err := unmarshalNotes(m.UserNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user notes: %w", err)
	}
	providerNotes, err := unmarshalNotes(m.ProviderNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider notes: %w", err)
	}
	adminNotes, err := unmarshalNotes(m.AdminNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal admin notes: %w", err)
	}

	return bookingDomain.ReconstructBooking(
		m.ID, m.UserID, m.ServiceID, m.ProviderID,
		m.BookingDate,
		start, end,
		m.Duration,
		bookingDomain.BookingStatus(m.Status),
		m.TotalAmount,
		m.Currency,
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.PaymentOrderID, m.PaymentRef,
		m.SpecialRequests,
		bookingDomain.CancelActor(m.CancelledBy),
		m.CancelReason,
		m.CancellationFee, m.RefundAmount,
		rating,
		userNotes, providerNotes, adminNotes,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func marshalNotes(notes []bookingDomain.Note) (json.RawMessage, error) {
	if len(notes) == 0 {
		return nil, nil
	}
	return json.Marshal(notes)
}

func unmarshalNotes(raw json.RawMessage) ([]bookingDomain.Note, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var notes []bookingDomain.Note
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}
