package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/platform/response"
)

// ContractHandler handles staff HTTP requests for contracts and their invoices.
type ContractHandler struct {
	service *application.RentalService
}

// NewContractHandler creates a new ContractHandler.
func NewContractHandler(service *application.RentalService) *ContractHandler {
	return &ContractHandler{service: service}
}

// RegisterRoutes registers all contract routes on the given router group.
func (h *ContractHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, idem gin.HandlerFunc) {
	idem = orPassthrough(idem)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	contracts := r.Group("/api/v1/contracts")
	contracts.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleEmployee, auth.RoleAdmin))
	{
		contracts.POST("", idem, h.CreateContract)
		contracts.GET("", h.ListContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.GET("/:id/invoices", h.ListInvoices)
		contracts.POST("/:id/sign", h.SignContract)
		contracts.POST("/:id/complete", idem, h.CompleteContract)
		contracts.POST("/:id/cancel", idem, h.CancelContract)
		contracts.POST("/:id/expire", adminOnly, h.ExpireContract)
		contracts.DELETE("/:id", adminOnly, h.DeleteContract)
	}
}

// CreateContract handles POST /api/v1/contracts.
func (h *ContractHandler) CreateContract(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateContract(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListContracts handles GET /api/v1/contracts.
func (h *ContractHandler) ListContracts(c *gin.Context) {
	page, limit := parsePagination(c)
	customerID, ok := optionalUUIDQuery(c, "customer_id")
	if !ok {
		return
	}
	carID, ok := optionalUUIDQuery(c, "car_id")
	if !ok {
		return
	}

	result, err := h.service.ListContracts(c.Request.Context(), application.ContractQuery{
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

// GetContract handles GET /api/v1/contracts/:id.
func (h *ContractHandler) GetContract(c *gin.Context) {
	contractID, ok := parseID(c, "contract")
	if !ok {
		return
	}

	result, err := h.service.GetContract(c.Request.Context(), contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// ListInvoices handles GET /api/v1/contracts/:id/invoices.
func (h *ContractHandler) ListInvoices(c *gin.Context) {
	contractID, ok := parseID(c, "contract")
	if !ok {
		return
	}

	result, err := h.service.ListInvoices(c.Request.Context(), contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, result)
}

// SignContract handles POST /api/v1/contracts/:id/sign.
func (h *ContractHandler) SignContract(c *gin.Context) {
	h.transition(c, h.service.SignContract, "contract signed")
}

// CompleteContract handles POST /api/v1/contracts/:id/complete.
func (h *ContractHandler) CompleteContract(c *gin.Context) {
	h.transition(c, h.service.CompleteContract, "contract completed")
}

// CancelContract handles POST /api/v1/contracts/:id/cancel.
func (h *ContractHandler) CancelContract(c *gin.Context) {
	h.transition(c, h.service.CancelContract, "contract cancelled")
}

// ExpireContract handles POST /api/v1/contracts/:id/expire.
func (h *ContractHandler) ExpireContract(c *gin.Context) {
	h.transition(c, h.service.ExpireContract, "contract expired")
}

// DeleteContract handles DELETE /api/v1/contracts/:id.
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	contractID, ok := parseID(c, "contract")
	if !ok {
		return
	}

	if err := h.service.DeleteContract(c.Request.Context(), actor, contractID); err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, "contract deleted", nil)
}

type contractTransition func(ctx context.Context, actor application.Actor, id uuid.UUID) (*application.ContractDTO, error)

func (h *ContractHandler) transition(c *gin.Context, apply contractTransition, message string) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	contractID, ok := parseID(c, "contract")
	if !ok {
		return
	}

	result, err := apply(c.Request.Context(), actor, contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Action(c, http.StatusOK, message, gin.H{"contract": result})
}
