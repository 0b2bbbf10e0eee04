package handler

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/platform/response"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding rules used by request structs.
// Request structs tagged with an unregistered rule fail every bind, so callers must
// treat an error as fatal.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		if err := v.RegisterValidation("isodate", isoDate); err != nil {
			registerErr = fmt.Errorf("failed to register isodate validator: %w", err)
		}
	})
	return registerErr
}

// isoDate accepts calendar dates written as YYYY-MM-DD.
func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(rental.DateLayout, fl.Field().String())
	return err == nil
}

// CallerScope keys idempotency records by the authenticated user.
func CallerScope(c *gin.Context) string {
	if id, ok := middleware.GetUserID(c); ok {
		return id.String()
	}
	return "anonymous"
}

func passthrough(c *gin.Context) { c.Next() }

func orPassthrough(h gin.HandlerFunc) gin.HandlerFunc {
	if h == nil {
		return passthrough
	}
	return h
}

// actorFrom builds the acting principal from the auth middleware's context values.
func actorFrom(c *gin.Context) (application.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return application.Actor{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return application.Actor{}, false
	}
	return application.Actor{UserID: userID, Role: role, IPAddress: c.ClientIP()}, true
}

func parseID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid "+entity+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
