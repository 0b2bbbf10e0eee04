package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/platform/response"
)

// CarHandler handles HTTP requests for the fleet.
type CarHandler struct {
	service *application.FleetService
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(service *application.FleetService) *CarHandler {
	return &CarHandler{service: service}
}

// RegisterRoutes registers all car routes on the given router group.
func (h *CarHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, idem gin.HandlerFunc) {
	cars := r.Group("/api/v1/cars")
	cars.Use(middleware.AuthMiddleware(jwtManager))
	{
		cars.GET("", h.ListCars)
		cars.GET("/:id", h.GetCar)
		cars.GET("/:id/availability", h.CheckAvailability)
		cars.POST("", middleware.RequireRole(auth.RoleAdmin), orPassthrough(idem), h.CreateCar)
	}
}

// CreateCar handles POST /api/v1/cars.
func (h *CarHandler) CreateCar(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCar(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListCars handles GET /api/v1/cars.
func (h *CarHandler) ListCars(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListCars(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, *result)
}

// GetCar handles GET /api/v1/cars/:id.
func (h *CarHandler) GetCar(c *gin.Context) {
	carID, ok := parseID(c, "car")
	if !ok {
		return
	}

	result, err := h.service.GetCar(c.Request.Context(), carID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// CheckAvailability handles GET /api/v1/cars/:id/availability?start_date&end_date.
func (h *CarHandler) CheckAvailability(c *gin.Context) {
	carID, ok := parseID(c, "car")
	if !ok {
		return
	}

	start, end := c.Query("start_date"), c.Query("end_date")
	if start == "" || end == "" {
		response.BadRequest(c, "start_date and end_date are required")
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), carID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}
