package user

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prizedraw/internal/api"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*User), args.String(1), args.Error(2)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*User), args.String(1), args.Error(2)
}

func (m *MockService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func userRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(svc)

	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.GET("/me", func(c *gin.Context) {
		c.Set("user_id", 7)
		c.Next()
	}, handler.GetMe)
	return router
}

func TestHandler_Register(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, RegisterRequest{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "password123",
	}).Return(&User{ID: 1, Email: "new@example.com", Name: "New User", Role: "user"}, "tok123", nil)

	body, _ := json.Marshal(map[string]string{
		"email":    "new@example.com",
		"name":     "New User",
		"password": "password123",
	})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	userRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok123", resp.Data.Token)
	assert.Equal(t, "new@example.com", resp.Data.User.Email)
	svc.AssertExpectations(t)
}

func TestHandler_Register_InvalidBody(t *testing.T) {
	svc := new(MockService)

	body := []byte(`{"email": "not-an-email", "password": "short"}`)
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	userRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register")
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, "", fmt.Errorf("%w: invalid credentials", api.ErrUnauthorized))

	body, _ := json.Marshal(map[string]string{
		"email":    "user@example.com",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	userRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_GetMe(t *testing.T) {
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, 7).
		Return(&User{ID: 7, Email: "me@example.com", Name: "Me", Role: "user"}, nil)

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	userRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Data.ID)
	svc.AssertExpectations(t)
}
