package wallet

import "time"

type Wallet struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	FiatBalanceCents int64     `db:"fiat_balance_cents" json:"fiat_balance_cents"`
	TicketBalance    int       `db:"ticket_balance" json:"ticket_balance"`
	Version          int       `db:"version" json:"version"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one append-only ledger row. Amounts are signed: credits
// positive, debits negative. BalanceAfter is the fiat balance the mutation
// committed, written in the same transaction as the wallet update.
type Transaction struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	AmountCents    int64     `db:"amount_cents" json:"amount_cents"`
	Type           string    `db:"type" json:"type"` // credit, debit
	Reason         string    `db:"reason" json:"reason"`
	BalanceAfter   int64     `db:"balance_after" json:"balance_after"`
	IdempotencyKey *string   `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// Ledger mutation reasons.
const (
	ReasonTopUp           = "topup"
	ReasonTicketPurchase  = "ticket_purchase"
	ReasonDonation        = "donation"
	ReasonCreatorEarnings = "creator_earnings"
	ReasonPlatformFee     = "platform_fee"
	ReasonEscrowReserve   = "escrow_reserve"
	ReasonEscrowRefund    = "escrow_refund"
	ReasonPrizePayout     = "prize_payout"
)
