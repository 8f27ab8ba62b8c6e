package giveaway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"prizedraw/internal/api"
	"prizedraw/internal/audit"
	"prizedraw/internal/wallet"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const giveawayColumns = `id, title, creator_id, status, prize_amount_cents, escrow_amount_cents,
	escrow_status, funding_mode, ticket_price_cents, split_platform, split_creator, split_prize,
	temp_winner_id, winner_id, max_tickets, ends_at, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, g *Giveaway) (*Giveaway, error) {
	var out Giveaway
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO giveaways
			(title, creator_id, prize_amount_cents, ticket_price_cents,
			 split_platform, split_creator, split_prize, max_tickets, ends_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+giveawayColumns,
		g.Title, g.CreatorID, g.PrizeAmountCents, g.TicketPriceCents,
		g.SplitPlatform, g.SplitCreator, g.SplitPrize, g.MaxTickets, g.EndsAt,
	).StructScan(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Giveaway, error) {
	var g Giveaway
	err := r.db.GetContext(ctx, &g,
		`SELECT `+giveawayColumns+` FROM giveaways WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: giveaway %d", api.ErrNotFound, id)
		}
		return nil, err
	}
	return &g, nil
}

func (r *Repository) List(ctx context.Context, status Status, limit, offset int) ([]Giveaway, error) {
	if limit <= 0 {
		limit = 50
	}

	var gs []Giveaway
	var err error
	if status == "" {
		err = r.db.SelectContext(ctx, &gs,
			`SELECT `+giveawayColumns+` FROM giveaways ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &gs,
			`SELECT `+giveawayColumns+` FROM giveaways WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	if gs == nil {
		gs = []Giveaway{}
	}
	return gs, nil
}

// ExpiredActiveIDs returns active giveaways whose ends_at has elapsed or
// whose ticket inventory is sold out, for the periodic close sweep.
func (r *Repository) ExpiredActiveIDs(ctx context.Context) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `
		SELECT g.id
		FROM giveaways g
		WHERE g.status = 'active'
		  AND (g.ends_at <= NOW()
		       OR (g.max_tickets IS NOT NULL AND g.max_tickets <=
		           (SELECT COALESCE(SUM(t.quantity), 0) FROM tickets t WHERE t.giveaway_id = g.id)))
	`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// checkCAS converts an UPDATE result into a conflict error when the
// compare-and-set matched no row, meaning another writer flipped the
// status first.
func checkCAS(res sql.Result, id int) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		return fmt.Errorf("%w: giveaway %d changed state concurrently", api.ErrConcurrencyConflict, id)
	}
	return nil
}

// Activate reserves escrow and flips draft -> active in one transaction.
// With FundingAdminBypass no wallet debit happens; the audit note carries
// the elevated detail instead.
func (r *Repository) Activate(ctx context.Context, g *Giveaway, mode FundingMode, actorID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	note := fmt.Sprintf("escrow %d cents reserved from creator %d", g.PrizeAmountCents, g.CreatorID)
	if mode == FundingAdminBypass {
		note = fmt.Sprintf("ADMIN BYPASS: escrow %d cents funded by platform, authorized by admin %d, no creator debit", g.PrizeAmountCents, actorID)
	} else if g.PrizeAmountCents > 0 {
		if _, err := wallet.DebitInTx(ctx, tx, g.CreatorID, g.PrizeAmountCents, wallet.ReasonEscrowReserve); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE giveaways
		 SET status = 'active', escrow_amount_cents = $1, escrow_status = $2,
		     funding_mode = $3, updated_at = NOW()
		 WHERE id = $4 AND status = 'draft'`,
		g.PrizeAmountCents, EscrowHeld, mode, g.ID,
	)
	if err != nil {
		return err
	}
	if err := checkCAS(res, g.ID); err != nil {
		return err
	}

	if err := audit.InsertInTx(ctx, tx, g.ID, actorID, nil, audit.ActionEscrowActivated, note); err != nil {
		return err
	}

	return tx.Commit()
}

// Close flips active -> ended. A lost race surfaces as
// ErrConcurrencyConflict; the periodic sweep treats that as already done.
func (r *Repository) Close(ctx context.Context, id, actorID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE giveaways SET status = 'ended', updated_at = NOW()
		 WHERE id = $1 AND status = 'active'`,
		id,
	)
	if err != nil {
		return err
	}
	if err := checkCAS(res, id); err != nil {
		return err
	}

	if err := audit.InsertInTx(ctx, tx, id, actorID, nil, audit.ActionGiveawayClosed, "entry window closed"); err != nil {
		return err
	}

	return tx.Commit()
}

// Cancel flips any non-terminal status to cancelled, refunding held escrow
// to the creator in the same transaction. The expected pre-state comes
// from the caller's read of g.Status.
func (r *Repository) Cancel(ctx context.Context, g *Giveaway, actorID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	newEscrowStatus := g.EscrowStatus
	if g.EscrowStatus == EscrowHeld {
		newEscrowStatus = EscrowRefunded
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE giveaways
		 SET status = 'cancelled', escrow_amount_cents = 0, escrow_status = $1,
		     temp_winner_id = NULL, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		newEscrowStatus, g.ID, g.Status,
	)
	if err != nil {
		return err
	}
	if err := checkCAS(res, g.ID); err != nil {
		return err
	}

	note := "cancelled, no escrow held"
	if g.EscrowStatus == EscrowHeld && g.EscrowAmountCents > 0 {
		if g.FundingMode == FundingAdminBypass {
			note = fmt.Sprintf("ADMIN BYPASS escrow %d cents released back to platform", g.EscrowAmountCents)
		} else {
			if _, err := wallet.CreditInTx(ctx, tx, g.CreatorID, g.EscrowAmountCents, wallet.ReasonEscrowRefund, ""); err != nil {
				return err
			}
			note = fmt.Sprintf("escrow %d cents refunded to creator %d", g.EscrowAmountCents, g.CreatorID)
		}
		if err := audit.InsertInTx(ctx, tx, g.ID, actorID, nil, audit.ActionEscrowRefunded, note); err != nil {
			return err
		}
	}

	if err := audit.InsertInTx(ctx, tx, g.ID, actorID, nil, audit.ActionGiveawayCancel, note); err != nil {
		return err
	}

	return tx.Commit()
}

// LockActiveInTx takes a share lock on the giveaway row and fails unless
// the status is still active. Entry transactions call it so a purchase or
// donation racing a concurrent close or cancel loses instead of committing
// into a closed giveaway.
func LockActiveInTx(ctx context.Context, tx *sqlx.Tx, id int) error {
	var status Status
	err := tx.GetContext(ctx, &status, `SELECT status FROM giveaways WHERE id = $1 FOR SHARE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: giveaway %d", api.ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if status != StatusActive {
		return fmt.Errorf("%w: giveaway %d is %s, no longer accepting entries", api.ErrStateConflict, id, status)
	}
	return nil
}

// AddToEscrowInTx grows the held escrow by the prize bucket of a donation.
// Guarded on active status so a donation cannot land after close.
func AddToEscrowInTx(ctx context.Context, tx *sqlx.Tx, id int, amountCents int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE giveaways
		 SET escrow_amount_cents = escrow_amount_cents + $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'active'`,
		amountCents, id,
	)
	if err != nil {
		return err
	}
	return checkCAS(res, id)
}
