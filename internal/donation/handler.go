package donation

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prizedraw/internal/api"
	"prizedraw/internal/auth"
	"prizedraw/internal/giveaway"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type DonateRequest struct {
	AmountCents int64           `json:"amount_cents" binding:"required"`
	Split       *giveaway.Split `json:"split,omitempty"`
}

// Donate godoc
// @Summary      Donate to a giveaway's prize pool
// @Description  Splits the amount across platform fee, creator earnings
// @Description  and prize escrow; an explicit split must sum to 1.0.
// @Tags         donations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Param        request body DonateRequest true "Donation"
// @Success      201 {object} api.DataResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /giveaways/{giveawayID}/donate [post]
func (h *Handler) Donate(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	giveawayID, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		api.Fail(c, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation))
		return
	}

	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, fmt.Errorf("%w: amount_cents is required", api.ErrValidation))
		return
	}

	res, err := h.svc.Donate(c.Request.Context(), giveawayID, userID, req.AmountCents, req.Split)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusCreated, res)
}

// ListForGiveaway godoc
// @Summary      List contributions to a giveaway
// @Tags         donations
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path  int true  "Giveaway ID"
// @Param        limit      query int false "Page size"
// @Param        offset     query int false "Page offset"
// @Success      200 {object} api.DataResponse
// @Router       /giveaways/{giveawayID}/donations [get]
func (h *Handler) ListForGiveaway(c *gin.Context) {
	giveawayID, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		api.Fail(c, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	cs, err := h.svc.ListForGiveaway(c.Request.Context(), giveawayID, limit, offset)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, cs)
}
