package giveaway

import (
	"fmt"
	"net/http"
	"strconv"

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

// Create godoc
// @Summary      Create giveaway (draft)
// @Tags         giveaways
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Giveaway"
// @Success      201 {object} api.DataResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /giveaways [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, fmt.Errorf("%w: %s", api.ErrValidation, err.Error()))
		return
	}
	req.CreatorID = userID

	if err := api.ValidateStruct(req); err != nil {
		api.FailValidation(c, err)
		return
	}

	g, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusCreated, g)
}

// Get godoc
// @Summary      Get giveaway
// @Tags         giveaways
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /giveaways/{giveawayID} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		api.Fail(c, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation))
		return
	}

	g, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, g)
}

// List godoc
// @Summary      List giveaways
// @Tags         giveaways
// @Security     BearerAuth
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        limit  query int    false "Page size"
// @Param        offset query int    false "Page offset"
// @Success      200 {object} api.DataResponse
// @Router       /giveaways [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	gs, err := h.svc.List(c.Request.Context(), Status(c.Query("status")), limit, offset)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, gs)
}

type ActivateRequest struct {
	FundingMode FundingMode `json:"funding_mode"`
}

// Activate godoc
// @Summary      Activate giveaway and reserve escrow
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Param        request body ActivateRequest false "Funding mode"
// @Success      200 {object} api.DataResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/giveaways/{giveawayID}/activate [post]
func (h *Handler) Activate(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	id, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		api.Fail(c, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation))
		return
	}

	var req ActivateRequest
	_ = c.ShouldBindJSON(&req)

	g, err := h.svc.Activate(c.Request.Context(), id, actorID, req.FundingMode)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, g)
}

// Close godoc
// @Summary      Close an active giveaway
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/giveaways/{giveawayID}/close [post]
func (h *Handler) Close(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	id, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		api.Fail(c, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation))
		return
	}

	changed, err := h.svc.Close(c.Request.Context(), id, actorID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, gin.H{"closed": changed})
}

// Cancel godoc
// @Summary      Cancel giveaway and refund escrow
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/giveaways/{giveawayID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	id, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		api.Fail(c, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation))
		return
	}

	g, err := h.svc.Cancel(c.Request.Context(), id, actorID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, g)
}
