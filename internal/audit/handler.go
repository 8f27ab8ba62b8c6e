package audit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prizedraw/internal/api"
)

type Handler struct {
	log Log
}

func NewHandler(log Log) *Handler {
	return &Handler{log: log}
}

// ListForGiveaway godoc
// @Summary      Audit trail for a giveaway
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        giveawayID path  int true  "Giveaway ID"
// @Param        limit      query int false "Page size"
// @Param        offset     query int false "Page offset"
// @Success      200 {object} api.DataResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /giveaways/{giveawayID}/audit [get]
func (h *Handler) ListForGiveaway(c *gin.Context) {
	giveawayID, err := strconv.Atoi(c.Param("giveawayID"))
	if err != nil {
		api.Fail(c, fmt.Errorf("%w: invalid giveaway ID", api.ErrValidation))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	recs, err := h.log.List(c.Request.Context(), giveawayID, limit, offset)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, recs)
}
