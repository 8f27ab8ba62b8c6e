package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Empty header", "", http.StatusUnauthorized},
		{"Invalid format", "Token abc", http.StatusUnauthorized},
		{"Empty token", "Bearer ", http.StatusUnauthorized},
		{"Garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			c.Request = req

			handler := Middleware("secret")
			handler(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestMiddleware_SetsContextValues(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := GenerateToken(42, "user@example.com", "admin", testSecret)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c.Request = req

	handler := Middleware(testSecret)
	handler(c)

	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, 42, id)
	assert.Equal(t, "admin", GetRole(c))
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		userID   any
		expected int
		ok       bool
	}{
		{"Valid ID", 42, 42, true},
		{"Missing ID", nil, 0, false},
		{"Wrong type", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			if tt.userID != nil {
				c.Set("user_id", tt.userID)
			}
			c.Request = httptest.NewRequest("GET", "/", nil)

			id, ok := GetUserID(c)
			assert.Equal(t, tt.expected, id)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestGetRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.Equal(t, "", GetRole(c))

	c.Set("user_role", "admin")
	assert.Equal(t, "admin", GetRole(c))
}
