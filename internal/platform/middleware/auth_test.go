package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuexe/service-rental/internal/platform/auth"
)

func newTestRouter(jwtManager *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/staff", AuthMiddleware(jwtManager), RequireRole(auth.RoleEmployee, auth.RoleAdmin), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	r := newTestRouter(auth.NewJWTManager("s", time.Minute, time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequireRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("s", time.Minute, time.Hour)
	r := newTestRouter(jwtManager)
	userID := uuid.New()

	cases := []struct {
		role   auth.Role
		status int
	}{
		{auth.RoleEmployee, http.StatusOK},
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleCustomer, http.StatusForbidden},
	}
	for _, tc := range cases {
		token, err := jwtManager.GenerateAccessToken(userID, "", tc.role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.status, w.Code, "role %s", tc.role)
		if tc.status == http.StatusOK {
			assert.Equal(t, userID.String(), w.Body.String())
		}
	}
}
