package ticket

import "time"

// Ticket rows are immutable once created; refunds are modelled as
// compensating ledger entries, never by mutating a ticket.
type Ticket struct {
	ID         int       `db:"id" json:"id"`
	GiveawayID int       `db:"giveaway_id" json:"giveaway_id"`
	UserID     int       `db:"user_id" json:"user_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	IsFree     bool      `db:"is_free" json:"is_free"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Entry is one user's aggregated weight in the winner draw: Units ticket
// units mean Units equally-likely chances.
type Entry struct {
	UserID int `db:"user_id" json:"user_id"`
	Units  int `db:"units" json:"units"`
}

type Purchase struct {
	Ticket          *Ticket `json:"ticket"`
	NewBalanceCents int64   `json:"new_balance_cents"`
	CostCents       int64   `json:"cost_cents"`
}

type FreeClaim struct {
	Claimed bool `json:"claimed"`
	Already bool `json:"already"`
}
