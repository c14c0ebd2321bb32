package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bookora/service-marketplace/internal/application"
	"github.com/bookora/service-marketplace/pkg/auth"
	"github.com/bookora/service-marketplace/pkg/middleware"
	"github.com/bookora/service-marketplace/pkg/response"
)

// ServiceHandler handles HTTP requests for the service catalog.
type ServiceHandler struct {
	catalog *application.ServiceCatalog
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(catalog *application.ServiceCatalog) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// RegisterRoutes registers all service catalog routes on the given router group.
func (h *ServiceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	services := r.Group("/api/v1/services")
	services.Use(authMW)
	{
		services.GET("", h.ListActiveServices)
		services.GET("/mine", middleware.RequireRole(auth.RoleProvider), h.ListMyServices)
		services.GET("/:id", h.GetService)
		services.POST("", middleware.RequireRole(auth.RoleProvider), h.CreateService)
		services.PUT("/:id", middleware.RequireRole(auth.RoleProvider), h.UpdateService)
		services.POST("/:id/activate", middleware.RequireRole(auth.RoleProvider), h.ActivateService)
		services.POST("/:id/deactivate", middleware.RequireRole(auth.RoleProvider), h.DeactivateService)
	}
}

// ListActiveServices handles GET /api/v1/services.
func (h *ServiceHandler) ListActiveServices(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.catalog.ListActiveServices(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListMyServices handles GET /api/v1/services/mine.
func (h *ServiceHandler) ListMyServices(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	page, limit := parsePagination(c)
	result, err := h.catalog.ListProviderServices(c.Request.Context(), providerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetService handles GET /api/v1/services/:id.
func (h *ServiceHandler) GetService(c *gin.Context) {
	serviceID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}
	result, err := h.catalog.GetService(c.Request.Context(), serviceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateService handles POST /api/v1/services.
func (h *ServiceHandler) CreateService(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}

	var req application.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.CreateService(c.Request.Context(), providerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateService handles PUT /api/v1/services/:id.
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	serviceID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var req application.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.UpdateService(c.Request.Context(), serviceID, providerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ActivateService handles POST /api/v1/services/:id/activate.
func (h *ServiceHandler) ActivateService(c *gin.Context) {
	h.toggle(c, true)
}

// DeactivateService handles POST /api/v1/services/:id/deactivate.
func (h *ServiceHandler) DeactivateService(c *gin.Context) {
	h.toggle(c, false)
}

func (h *ServiceHandler) toggle(c *gin.Context, active bool) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthenticated)
		return
	}
	serviceID, err := pathID(c)
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var result *application.ServiceDTO
	if active {
		result, err = h.catalog.ActivateService(c.Request.Context(), serviceID, providerID)
	} else {
		result, err = h.catalog.DeactivateService(c.Request.Context(), serviceID, providerID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
