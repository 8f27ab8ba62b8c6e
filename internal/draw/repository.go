package draw

import (
	"context"
	"database/sql"
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

// SetDraftWinner records the pick and flips ended -> review_pending in one
// compare-and-set, which is also what keeps two concurrent draws from both
// landing.
func (r *Repository) SetDraftWinner(ctx context.Context, giveawayID, actorID int, pick *Pick) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE giveaways
		 SET status = 'review_pending', temp_winner_id = $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'ended'`,
		pick.WinnerID, giveawayID,
	)
	if err != nil {
		return err
	}
	if err := checkCAS(res, giveawayID); err != nil {
		return err
	}

	note := fmt.Sprintf("drew unit %d of %d for user %d", pick.UnitIndex, pick.TotalUnits, pick.WinnerID)
	winner := pick.WinnerID
	if err := audit.InsertInTx(ctx, tx, giveawayID, actorID, &winner, audit.ActionWinnerDrafted, note); err != nil {
		return err
	}

	return tx.Commit()
}

// Repick replaces the draft winner while staying in review_pending. The
// WHERE clause still compares status so a concurrent finalize or cancel
// wins cleanly.
func (r *Repository) Repick(ctx context.Context, giveawayID, actorID, previousWinnerID int, pick *Pick) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE giveaways
		 SET temp_winner_id = $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'review_pending' AND temp_winner_id = $3`,
		pick.WinnerID, giveawayID, previousWinnerID,
	)
	if err != nil {
		return err
	}
	if err := checkCAS(res, giveawayID); err != nil {
		return err
	}

	note := fmt.Sprintf("rejected user %d, drew unit %d of %d for user %d",
		previousWinnerID, pick.UnitIndex, pick.TotalUnits, pick.WinnerID)
	winner := pick.WinnerID
	if err := audit.InsertInTx(ctx, tx, giveawayID, actorID, &winner, audit.ActionRepick, note); err != nil {
		return err
	}

	return tx.Commit()
}

// Finalize promotes the draft winner, releases escrow into their wallet
// and closes out the giveaway, all in one transaction.
func (r *Repository) Finalize(ctx context.Context, giveawayID, actorID, winnerID int, escrowCents int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE giveaways
		 SET status = 'completed', winner_id = temp_winner_id,
		     escrow_amount_cents = 0, escrow_status = 'released', updated_at = NOW()
		 WHERE id = $1 AND status = 'review_pending' AND temp_winner_id = $2`,
		giveawayID, winnerID,
	)
	if err != nil {
		return err
	}
	if err := checkCAS(res, giveawayID); err != nil {
		return err
	}

	winner := winnerID
	if err := audit.InsertInTx(ctx, tx, giveawayID, actorID, &winner, audit.ActionWinnerFinalized,
		fmt.Sprintf("winner %d confirmed by admin %d", winnerID, actorID)); err != nil {
		return err
	}

	if escrowCents > 0 {
		if _, err := wallet.CreditInTx(ctx, tx, winnerID, escrowCents, wallet.ReasonPrizePayout, ""); err != nil {
			return err
		}
	}
	if err := audit.InsertInTx(ctx, tx, giveawayID, actorID, &winner, audit.ActionEscrowReleased,
		fmt.Sprintf("%d cents paid to winner %d", escrowCents, winnerID)); err != nil {
		return err
	}

	return tx.Commit()
}
