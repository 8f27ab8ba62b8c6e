package wallet

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prizedraw/internal/api"
	"prizedraw/internal/auth"
	"prizedraw/internal/metrics"
)

type Handler struct {
	ledger Ledger
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{ledger: ledger}
}

type TopUpRequest struct {
	AmountCents    int64  `json:"amount_cents" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// GetBalance godoc
// @Summary      Get wallet balance
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} api.DataResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	w, err := h.ledger.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, w)
}

// TopUp godoc
// @Summary      Credit the wallet
// @Description  Stand-in for the payment event source; the idempotency key
// @Description  makes retried webhook deliveries safe.
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body TopUpRequest true "Top-up"
// @Success      200 {object} api.DataResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /wallet/topup [post]
func (h *Handler) TopUp(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AmountCents <= 0 {
		api.Fail(c, fmt.Errorf("%w: amount_cents must be positive", api.ErrValidation))
		return
	}

	newBalance, err := h.ledger.Credit(c.Request.Context(), userID, req.AmountCents, ReasonTopUp, req.IdempotencyKey)
	if err != nil {
		api.Fail(c, err)
		return
	}

	metrics.RecordTopUp()
	api.OK(c, http.StatusOK, gin.H{"balance_cents": newBalance})
}

// ListTransactions godoc
// @Summary      Wallet transaction history
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200 {object} api.DataResponse
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.ledger.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, txs)
}
