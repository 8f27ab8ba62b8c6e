package audit

import "time"

// Record is one immutable audit row. Rows are only ever inserted; for
// financially-mutating actions the insert joins the same database
// transaction as the mutation it describes.
type Record struct {
	ID         int       `db:"id" json:"id"`
	GiveawayID *int      `db:"giveaway_id" json:"giveaway_id,omitempty"`
	ActorID    int       `db:"actor_id" json:"actor_id"`
	TargetID   *int      `db:"target_id" json:"target_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Note       string    `db:"note" json:"note"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

const (
	ActionTicketPurchase  = "ticket_purchase"
	ActionFreeTicketClaim = "free_ticket_claim"
	ActionDonation        = "donation"
	ActionEscrowActivated = "escrow_activated"
	ActionEscrowReleased  = "escrow_released"
	ActionEscrowRefunded  = "escrow_refunded"
	ActionGiveawayClosed  = "giveaway_closed"
	ActionGiveawayCancel  = "giveaway_cancelled"
	ActionWinnerDrafted   = "winner_drafted"
	ActionWinnerFinalized = "winner_finalized"
	ActionRepick          = "repick"
	ActionWinnerClaimed   = "winner_claimed"
)
