package draw

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

func giveawayParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation)
	}
	return id, nil
}

// DraftWinner godoc
// @Summary      Draw a provisional winner
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/giveaways/{giveawayID}/draft-winner [post]
func (h *Handler) DraftWinner(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	id, err := giveawayParam(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	g, err := h.svc.DraftWinner(c.Request.Context(), id, actorID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, g)
}

// RepickWinner godoc
// @Summary      Reject the draft winner and redraw
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/giveaways/{giveawayID}/repick [post]
func (h *Handler) RepickWinner(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	id, err := giveawayParam(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	g, err := h.svc.RepickWinner(c.Request.Context(), id, actorID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, g)
}

// FinalizeWinner godoc
// @Summary      Confirm the draft winner and release escrow
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/giveaways/{giveawayID}/finalize [post]
func (h *Handler) FinalizeWinner(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	id, err := giveawayParam(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	g, err := h.svc.FinalizeWinner(c.Request.Context(), id, actorID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, gin.H{"giveaway": g, "escrow_released": true})
}

// ClaimPrize godoc
// @Summary      Acknowledge a won prize
// @Tags         giveaways
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path int true "Giveaway ID"
// @Success      200 {object} api.DataResponse
// @Failure      403 {object} api.ErrorResponse
// @Router       /giveaways/{giveawayID}/claim [post]
func (h *Handler) ClaimPrize(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	id, err := giveawayParam(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	if err := h.svc.ClaimPrize(c.Request.Context(), id, userID); err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, gin.H{"claimed": true})
}
