package ticket

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"prizedraw/internal/audit"
	"prizedraw/internal/giveaway"
	"prizedraw/internal/wallet"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Purchase debits the buyer, inserts the ticket row and the audit record
// in one transaction. Nothing is observable unless all three commit. The
// active check is re-asserted under a row lock so a racing close cannot
// slip a ticket into an ended draw pool.
func (r *Repository) Purchase(ctx context.Context, giveawayID, userID, quantity int, costCents int64) (*Purchase, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := giveaway.LockActiveInTx(ctx, tx, giveawayID); err != nil {
		return nil, err
	}

	newBalance, err := wallet.DebitInTx(ctx, tx, userID, costCents, wallet.ReasonTicketPurchase)
	if err != nil {
		return nil, err
	}

	var t Ticket
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO tickets (giveaway_id, user_id, quantity, is_free)
		 VALUES ($1, $2, $3, FALSE)
		 RETURNING id, giveaway_id, user_id, quantity, is_free, created_at`,
		giveawayID, userID, quantity,
	).StructScan(&t)
	if err != nil {
		return nil, err
	}

	if err := wallet.AddTicketUnitsInTx(ctx, tx, userID, quantity); err != nil {
		return nil, err
	}

	note := fmt.Sprintf("%d tickets for %d cents", quantity, costCents)
	if err := audit.InsertInTx(ctx, tx, giveawayID, userID, nil, audit.ActionTicketPurchase, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Purchase{Ticket: &t, NewBalanceCents: newBalance, CostCents: costCents}, nil
}

// ClaimFree inserts the one allowed free ticket per (giveaway, user).
// The partial unique index makes duplicates a clean no-op: ON CONFLICT
// reports zero rows and the transaction commits nothing new.
func (r *Repository) ClaimFree(ctx context.Context, giveawayID, userID int) (*FreeClaim, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := giveaway.LockActiveInTx(ctx, tx, giveawayID); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tickets (giveaway_id, user_id, quantity, is_free)
		 VALUES ($1, $2, 1, TRUE)
		 ON CONFLICT (giveaway_id, user_id) WHERE is_free DO NOTHING`,
		giveawayID, userID,
	)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return &FreeClaim{Claimed: true, Already: true}, nil
	}

	if err := wallet.AddTicketUnitsInTx(ctx, tx, userID, 1); err != nil {
		return nil, err
	}

	if err := audit.InsertInTx(ctx, tx, giveawayID, userID, nil, audit.ActionFreeTicketClaim, "free ticket claimed"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &FreeClaim{Claimed: true, Already: false}, nil
}

// EntriesForGiveaway aggregates ticket units per user for the draw pool.
func (r *Repository) EntriesForGiveaway(ctx context.Context, giveawayID int) ([]Entry, error) {
	var entries []Entry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT user_id, SUM(quantity) AS units
		FROM tickets
		WHERE giveaway_id = $1
		GROUP BY user_id
		ORDER BY user_id
	`, giveawayID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SoldUnits returns the total ticket units sold for a giveaway.
func (r *Repository) SoldUnits(ctx context.Context, giveawayID int) (int, error) {
	var units int
	err := r.db.GetContext(ctx, &units,
		`SELECT COALESCE(SUM(quantity), 0) FROM tickets WHERE giveaway_id = $1`, giveawayID)
	return units, err
}

// ListForUser returns a user's tickets, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID, limit, offset int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 50
	}

	var ts []Ticket
	err := r.db.SelectContext(ctx, &ts, `
		SELECT id, giveaway_id, user_id, quantity, is_free, created_at
		FROM tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if ts == nil {
		ts = []Ticket{}
	}
	return ts, nil
}
