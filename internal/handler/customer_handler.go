package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/platform/response"
)

// CustomerHandler handles staff requests on customer profiles.
type CustomerHandler struct {
	customers *application.CustomerService
	rentals   *application.RentalService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customers *application.CustomerService, rentals *application.RentalService) *CustomerHandler {
	return &CustomerHandler{customers: customers, rentals: rentals}
}

// RegisterRoutes registers all customer routes on the given router group.
func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, idem gin.HandlerFunc) {
	customers := r.Group("/api/v1/customers")
	customers.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleEmployee, auth.RoleAdmin))
	{
		customers.POST("", orPassthrough(idem), h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.GET("/:id/bookings", h.ListCustomerBookings)
	}
}

// CreateCustomer handles POST /api/v1/customers.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.customers.CreateCustomer(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListCustomers handles GET /api/v1/customers.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.customers.ListCustomers(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}

// GetCustomer handles GET /api/v1/customers/:id.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customerID, ok := parseID(c, "customer")
	if !ok {
		return
	}

	result, err := h.customers.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// UpdateCustomer handles PUT /api/v1/customers/:id.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	customerID, ok := parseID(c, "customer")
	if !ok {
		return
	}

	var req application.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.customers.UpdateCustomer(c.Request.Context(), actor, customerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// ListCustomerBookings handles GET /api/v1/customers/:id/bookings.
func (h *CustomerHandler) ListCustomerBookings(c *gin.Context) {
	customerID, ok := parseID(c, "customer")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	if _, err := h.customers.GetCustomer(c.Request.Context(), customerID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.rentals.ListBookings(c.Request.Context(),
		application.BookingQuery{Status: c.Query("status"), CustomerID: &customerID}, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}
