package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookora/service-marketplace/internal/application"
	"github.com/bookora/service-marketplace/pkg/auth"
	"github.com/bookora/service-marketplace/pkg/middleware"
	"github.com/bookora/service-marketplace/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleUser), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/accept", middleware.RequireRole(auth.RoleProvider), h.AcceptBooking)
		bookings.POST("/:id/reject", middleware.RequireRole(auth.RoleProvider), h.RejectBooking)
		bookings.POST("/:id/start", middleware.RequireRole(auth.RoleProvider), h.StartBooking)
		bookings.POST("/:id/complete", middleware.RequireRole(auth.RoleProvider), h.CompleteBooking)
		bookings.POST("/:id/no-show", middleware.RequireRole(auth.RoleProvider), h.MarkNoShow)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/rate", middleware.RequireRole(auth.RoleUser), h.RateBooking)
		bookings.POST("/:id/notes", h.AddNote)
		bookings.POST("/:id/pay", middleware.RequireRole(auth.RoleUser), h.InitiatePayment)
		bookings.POST("/:id/pay/verify", middleware.RequireRole(auth.RoleUser), h.VerifyPayment)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Users see their own bookings,
// providers see bookings on their services.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), userID, role, listParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AcceptBooking handles POST /api/v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.transition(c, h.service.AcceptBooking)
}

// RejectBooking handles POST /api/v1/bookings/:id/reject.
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RejectBooking(c.Request.Context(), bookingID, userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// StartBooking handles POST /api/v1/bookings/:id/start.
func (h *BookingHandler) StartBooking(c *gin.Context) {
	h.transition(c, h.service.StartBooking)
}

// CompleteBooking handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, h.service.CompleteBooking)
}

// MarkNoShow handles POST /api/v1/bookings/:id/no-show.
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.service.MarkNoShow)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel. Open to the
// booking's user, its provider and admins; fee policy applies per actor.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID, role, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RateBooking handles POST /api/v1/bookings/:id/rate.
func (h *BookingHandler) RateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		Score   int    `json:"score" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RateBooking(c.Request.Context(), bookingID, userID, req.Score, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddNote handles POST /api/v1/bookings/:id/notes. The note lands in the
// list matching the caller's role.
func (h *BookingHandler) AddNote(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddNote(c.Request.Context(), bookingID, userID, role, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// InitiatePayment handles POST /api/v1/bookings/:id/pay.
func (h *BookingHandler) InitiatePayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.InitiatePayment(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// VerifyPayment handles POST /api/v1/bookings/:id/pay/verify.
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		OrderID    string `json:"order_id" binding:"required"`
		PaymentRef string `json:"payment_ref" binding:"required"`
		Signature  string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.VerifyPayment(c.Request.Context(), bookingID, req.OrderID, req.PaymentRef, req.Signature)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// transition is the shared handler shape for provider-only status changes.
func (h *BookingHandler) transition(c *gin.Context, op func(ctx context.Context, bookingID, actorID uuid.UUID) (*application.BookingDTO, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := op(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// --- Shared helpers ---

func identity(c *gin.Context) (uuid.UUID, auth.Role, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, role, true
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

func listParams(c *gin.Context) application.ListBookingsParams {
	page, limit := parsePagination(c)
	return application.ListBookingsParams{
		Statuses:        c.QueryArray("status"),
		PaymentStatuses: c.QueryArray("payment_status"),
		DateFrom:        c.Query("date_from"),
		DateTo:          c.Query("date_to"),
		SortBy:          c.Query("sort_by"),
		SortDesc:        c.Query("sort_order") != "asc",
		Page:            page,
		Limit:           limit,
	}
}
