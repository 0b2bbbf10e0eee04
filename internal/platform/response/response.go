package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

// TotalCountHeader carries the unpaged total for collection responses.
const TotalCountHeader = "X-Total-Count"

// JSON writes an entity directly with 200.
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a newly created entity directly with 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Collection writes a page of items directly and reports the total in a header.
func Collection[T any](c *gin.Context, page domain.PaginatedResult[T]) {
	c.Header(TotalCountHeader, strconv.FormatInt(page.Total, 10))
	c.JSON(http.StatusOK, page.Items)
}

// Action writes the success envelope used by action endpoints.
func Action(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// BadRequest writes a validation failure.
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, domain.CodeValidation, message)
}

// Unauthorized writes an authentication failure.
func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, domain.CodeUnauthorized, message)
}

// Forbidden writes an authorization failure.
func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, domain.CodeForbidden, message)
}

// Error maps err onto the failure envelope. Unknown errors become a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}
	fail(c, StatusFor(appErr.Code), appErr.Code, appErr.Message)
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidState:
		return http.StatusUnprocessableEntity
	case domain.CodeRetryable:
		return http.StatusServiceUnavailable
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, code domain.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"code":    code,
	})
}
