package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bookora/service-marketplace/internal/application"
	"github.com/bookora/service-marketplace/pkg/auth"
	"github.com/bookora/service-marketplace/pkg/middleware"
	"github.com/bookora/service-marketplace/pkg/response"
)

// AdminHandler handles the administrative booking surface.
type AdminHandler struct {
	service *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.BookingService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListAllBookings)
		admin.GET("/bookings/stats", h.GetBookingStats)
		admin.DELETE("/bookings/:id", h.DeleteBooking)
	}
}

// ListAllBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListAllBookings(c *gin.Context) {
	result, err := h.service.ListAllBookings(c.Request.Context(), listParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) GetBookingStats(c *gin.Context) {
	result, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBooking handles DELETE /api/v1/admin/bookings/:id. Hard delete;
// normal cancellation is a status change through the booking endpoints.
func (h *AdminHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), bookingID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
