package donation

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"prizedraw/internal/audit"
	"prizedraw/internal/giveaway"
	"prizedraw/internal/wallet"
)

type Repository struct {
	db             *sqlx.DB
	platformUserID int
}

func NewRepository(db *sqlx.DB, platformUserID int) *Repository {
	return &Repository{db: db, platformUserID: platformUserID}
}

// Donate commits the whole allocation as one transaction: donor debit,
// escrow increment, creator credit, platform credit, contribution row,
// audit row. Any failure rolls the lot back. The active check is
// re-asserted under a row lock, which also covers splits whose prize
// bucket is zero and so never hit the guarded escrow update.
func (r *Repository) Donate(ctx context.Context, g *giveaway.Giveaway, userID int, amountCents, platformCents, creatorCents, prizeCents int64) (*Result, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := giveaway.LockActiveInTx(ctx, tx, g.ID); err != nil {
		return nil, err
	}

	donorBalance, err := wallet.DebitInTx(ctx, tx, userID, amountCents, wallet.ReasonDonation)
	if err != nil {
		return nil, err
	}

	if prizeCents > 0 {
		if err := giveaway.AddToEscrowInTx(ctx, tx, g.ID, prizeCents); err != nil {
			return nil, err
		}
	}

	if creatorCents > 0 {
		if _, err := wallet.CreditInTx(ctx, tx, g.CreatorID, creatorCents, wallet.ReasonCreatorEarnings, ""); err != nil {
			return nil, err
		}
	}

	if platformCents > 0 {
		if _, err := wallet.CreditInTx(ctx, tx, r.platformUserID, platformCents, wallet.ReasonPlatformFee, ""); err != nil {
			return nil, err
		}
	}

	var contrib Contribution
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO contributions
			(giveaway_id, user_id, amount_cents, split_platform_cents, split_creator_cents, split_prize_cents)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, giveaway_id, user_id, amount_cents, split_platform_cents, split_creator_cents, split_prize_cents, created_at`,
		g.ID, userID, amountCents, platformCents, creatorCents, prizeCents,
	).StructScan(&contrib)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("%d cents split platform=%d creator=%d prize=%d", amountCents, platformCents, creatorCents, prizeCents)
	if err := audit.InsertInTx(ctx, tx, g.ID, userID, nil, audit.ActionDonation, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Result{
		Contribution:      &contrib,
		PlatformCents:     platformCents,
		CreatorCents:      creatorCents,
		PrizeCents:        prizeCents,
		DonorBalanceCents: donorBalance,
		EscrowAmountCents: g.EscrowAmountCents + prizeCents,
	}, nil
}

// ListForGiveaway returns a giveaway's contributions, newest first.
func (r *Repository) ListForGiveaway(ctx context.Context, giveawayID, limit, offset int) ([]Contribution, error) {
	if limit <= 0 {
		limit = 50
	}

	var cs []Contribution
	err := r.db.SelectContext(ctx, &cs, `
		SELECT id, giveaway_id, user_id, amount_cents, split_platform_cents, split_creator_cents, split_prize_cents, created_at
		FROM contributions
		WHERE giveaway_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, giveawayID, limit, offset)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = []Contribution{}
	}
	return cs, nil
}
