package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/platform/response"
)

// SelfServiceHandler serves the customer-facing /me routes.
type SelfServiceHandler struct {
	customers *application.CustomerService
	rentals   *application.RentalService
}

// NewSelfServiceHandler creates a new SelfServiceHandler.
func NewSelfServiceHandler(customers *application.CustomerService, rentals *application.RentalService) *SelfServiceHandler {
	return &SelfServiceHandler{customers: customers, rentals: rentals}
}

// RegisterRoutes registers the customer's own routes.
func (h *SelfServiceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, idem gin.HandlerFunc) {
	idem = orPassthrough(idem)

	me := r.Group("/api/v1/me")
	me.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleCustomer))
	{
		me.GET("/profile", h.GetProfile)
		me.PUT("/profile", h.UpsertProfile)
		me.POST("/bookings", idem, h.CreateBooking)
		me.GET("/bookings", h.ListBookings)
		me.POST("/bookings/:id/cancel", idem, h.CancelBooking)
		me.GET("/contracts", h.ListContracts)
		me.GET("/notifications", h.ListNotifications)
		me.POST("/notifications/:id/read", h.MarkNotificationRead)
	}
}

// GetProfile handles GET /api/v1/me/profile.
func (h *SelfServiceHandler) GetProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.customers.GetMyProfile(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// UpsertProfile handles PUT /api/v1/me/profile.
func (h *SelfServiceHandler) UpsertProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.customers.UpsertMyProfile(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// CreateBooking handles POST /api/v1/me/bookings.
func (h *SelfServiceHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.SelfServiceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.rentals.CreateSelfServiceBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/me/bookings.
func (h *SelfServiceHandler) ListBookings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.rentals.ListMyBookings(c.Request.Context(), actor, c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}

// CancelBooking handles POST /api/v1/me/bookings/:id/cancel.
func (h *SelfServiceHandler) CancelBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}

	result, err := h.rentals.CancelBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "booking cancelled", gin.H{"booking": result})
}

// ListContracts handles GET /api/v1/me/contracts.
func (h *SelfServiceHandler) ListContracts(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.rentals.ListMyContracts(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}

// ListNotifications handles GET /api/v1/me/notifications.
func (h *SelfServiceHandler) ListNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.customers.ListMyNotifications(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}

// MarkNotificationRead handles POST /api/v1/me/notifications/:id/read.
func (h *SelfServiceHandler) MarkNotificationRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	notificationID, ok := parseID(c, "notification")
	if !ok {
		return
	}

	if err := h.customers.MarkNotificationRead(c.Request.Context(), actor, notificationID); err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "notification marked as read", nil)
}
