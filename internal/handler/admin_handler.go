package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/platform/response"
)

// AdminHandler handles admin-only HTTP requests.
type AdminHandler struct {
	admin   *application.AdminService
	rentals *application.RentalService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *application.AdminService, rentals *application.RentalService) *AdminHandler {
	return &AdminHandler{admin: admin, rentals: rentals}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/stats", h.GetStats)
		admin.GET("/audit-logs", h.ListAuditLogs)
		admin.POST("/bookings/expire-stale", h.ExpireStaleBookings)
	}
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	result, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// ListAuditLogs handles GET /api/v1/admin/audit-logs.
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.admin.ListAuditLogs(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}

// ExpireStaleBookings handles POST /api/v1/admin/bookings/expire-stale.
func (h *AdminHandler) ExpireStaleBookings(c *gin.Context) {
	count, err := h.rentals.ExpireStaleBookings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "stale bookings expired", gin.H{"expired": count})
}
