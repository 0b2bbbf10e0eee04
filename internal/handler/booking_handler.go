package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/platform/response"
)

// BookingHandler handles staff HTTP requests for bookings.
type BookingHandler struct {
	service *application.RentalService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.RentalService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, idem gin.HandlerFunc) {
	idem = orPassthrough(idem)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleEmployee, auth.RoleAdmin))
	{
		bookings.POST("", idem, h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/confirm", idem, h.ConfirmBooking)
		bookings.POST("/:id/cancel", idem, h.CancelBooking)
		bookings.POST("/:id/expire", adminOnly, h.ExpireBooking)
		bookings.DELETE("/:id", adminOnly, h.DeleteBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)
	customerID, ok := optionalUUIDQuery(c, "customer_id")
	if !ok {
		return
	}
	carID, ok := optionalUUIDQuery(c, "car_id")
	if !ok {
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), application.BookingQuery{
		Status:     c.Query("status"),
		CustomerID: customerID,
		CarID:      carID,
	}, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "booking confirmed", gin.H{
		"contract_id":     result.Contract.ID,
		"contract_number": result.Contract.ContractNumber,
		"booking":         result.Booking,
		"contract":        result.Contract,
	})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "booking cancelled", gin.H{"booking": result})
}

// ExpireBooking handles POST /api/v1/bookings/:id/expire.
func (h *BookingHandler) ExpireBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}

	result, err := h.service.ExpireBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "booking expired", gin.H{"booking": result})
}

// DeleteBooking handles DELETE /api/v1/bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), actor, bookingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "booking deleted", nil)
}
