package giveaway

import (
	"math"
	"time"
)

type Status string

const (
	StatusDraft         Status = "draft"
	StatusActive        Status = "active"
	StatusEnded         Status = "ended"
	StatusReviewPending Status = "review_pending"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

// FundingMode says where the escrowed prize comes from. Escrowed reserves
// the prize against the creator's wallet on activation; AdminBypass skips
// the reservation and is recorded with elevated audit detail.
type FundingMode string

const (
	FundingEscrowed    FundingMode = "escrowed"
	FundingAdminBypass FundingMode = "admin_bypass"
)

type EscrowStatus string

const (
	EscrowNone     EscrowStatus = "none"
	EscrowHeld     EscrowStatus = "held"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
)

type Giveaway struct {
	ID                int          `db:"id" json:"id"`
	Title             string       `db:"title" json:"title"`
	CreatorID         int          `db:"creator_id" json:"creator_id"`
	Status            Status       `db:"status" json:"status"`
	PrizeAmountCents  int64        `db:"prize_amount_cents" json:"prize_amount_cents"`
	EscrowAmountCents int64        `db:"escrow_amount_cents" json:"escrow_amount_cents"`
	EscrowStatus      EscrowStatus `db:"escrow_status" json:"escrow_status"`
	FundingMode       FundingMode  `db:"funding_mode" json:"funding_mode"`
	TicketPriceCents  int64        `db:"ticket_price_cents" json:"ticket_price_cents"`
	SplitPlatform     float64      `db:"split_platform" json:"split_platform"`
	SplitCreator      float64      `db:"split_creator" json:"split_creator"`
	SplitPrize        float64      `db:"split_prize" json:"split_prize"`
	TempWinnerID      *int         `db:"temp_winner_id" json:"temp_winner_id,omitempty"`
	WinnerID          *int         `db:"winner_id" json:"winner_id,omitempty"`
	MaxTickets        *int         `db:"max_tickets" json:"max_tickets,omitempty"`
	EndsAt            time.Time    `db:"ends_at" json:"ends_at"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updated_at"`
}

// Split is a donation allocation as ratios over platform fee, creator
// earnings and prize pool.
type Split struct {
	Platform float64 `json:"platform"`
	Creator  float64 `json:"creator"`
	Prize    float64 `json:"prize"`
}

// SplitTolerance bounds how far a split sum may drift from 1.0 before it
// is rejected.
const SplitTolerance = 1e-9

func (s Split) Sum() float64 {
	return s.Platform + s.Creator + s.Prize
}

func (s Split) IsNormalized() bool {
	return math.Abs(s.Sum()-1.0) <= SplitTolerance
}

// Normalize scales the components so they sum to exactly 1.0. A zero or
// negative sum falls back to the platform default.
func (s Split) Normalize() Split {
	sum := s.Sum()
	if sum <= 0 {
		return DefaultSplit
	}
	return Split{
		Platform: s.Platform / sum,
		Creator:  s.Creator / sum,
		Prize:    s.Prize / sum,
	}
}

var DefaultSplit = Split{Platform: 0.1, Creator: 0.1, Prize: 0.8}

// cancellable statuses; completed is terminal.
func (st Status) Cancellable() bool {
	switch st {
	case StatusDraft, StatusActive, StatusEnded, StatusReviewPending:
		return true
	}
	return false
}
