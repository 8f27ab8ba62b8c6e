package ticket

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

type BuyRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// Buy godoc
// @Summary      Buy tickets with wallet funds
// @Tags         tickets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Param        request body BuyRequest true "Quantity"
// @Success      201 {object} api.DataResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /giveaways/{giveawayID}/tickets [post]
func (h *Handler) Buy(c *gin.Context) {
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

	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, fmt.Errorf("%w: quantity is required", api.ErrValidation))
		return
	}

	p, err := h.svc.Buy(c.Request.Context(), giveawayID, userID, req.Quantity)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusCreated, p)
}

// ClaimFree godoc
// @Summary      Claim the one free ticket for a giveaway
// @Description  Idempotent: a repeat claim reports already=true.
// @Tags         tickets
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /giveaways/{giveawayID}/tickets/free [post]
func (h *Handler) ClaimFree(c *gin.Context) {
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

	claim, err := h.svc.ClaimFree(c.Request.Context(), giveawayID, userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, claim)
}

// ListMine godoc
// @Summary      List my tickets
// @Tags         tickets
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200 {object} api.DataResponse
// @Router       /tickets [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ts, err := h.svc.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, ts)
}
