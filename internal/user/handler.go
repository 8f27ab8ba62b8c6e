package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"prizedraw/internal/api"
	"prizedraw/internal/auth"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register godoc
// @Summary      Register new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201 {object} api.DataResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, fmt.Errorf("%w: %s", api.ErrValidation, err.Error()))
		return
	}

	u, token, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusCreated, LoginResponse{User: u, Token: token})
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} api.DataResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, fmt.Errorf("%w: %s", api.ErrValidation, err.Error()))
		return
	}

	u, token, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, LoginResponse{User: u, Token: token})
}

// GetMe godoc
// @Summary      Current user profile
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} api.DataResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	u, err := h.svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, u)
}
