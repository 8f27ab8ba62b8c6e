package donation

import "time"

// Contribution is one immutable donation row with the exact integer-cent
// allocation that was committed.
type Contribution struct {
	ID                 int       `db:"id" json:"id"`
	GiveawayID         int       `db:"giveaway_id" json:"giveaway_id"`
	UserID             int       `db:"user_id" json:"user_id"`
	AmountCents        int64     `db:"amount_cents" json:"amount_cents"`
	SplitPlatformCents int64     `db:"split_platform_cents" json:"split_platform_cents"`
	SplitCreatorCents  int64     `db:"split_creator_cents" json:"split_creator_cents"`
	SplitPrizeCents    int64     `db:"split_prize_cents" json:"split_prize_cents"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type Result struct {
	Contribution       *Contribution `json:"contribution"`
	PlatformCents      int64         `json:"platform_cents"`
	CreatorCents       int64         `json:"creator_cents"`
	PrizeCents         int64         `json:"prize_cents"`
	DonorBalanceCents  int64         `json:"donor_balance_cents"`
	EscrowAmountCents  int64         `json:"escrow_amount_cents"`
}
