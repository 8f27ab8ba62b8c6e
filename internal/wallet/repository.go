package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"prizedraw/internal/api"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, fiat_balance_cents, ticket_balance, version, created_at, updated_at`,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// Credit increases the fiat balance. A non-empty idempotencyKey makes the
// call replay-safe: if a ledger row with that key already exists the prior
// balance_after is returned and nothing is mutated.
func (r *Repository) Credit(ctx context.Context, userID int, amountCents int64, reason, idempotencyKey string) (int64, error) {
	if amountCents <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", api.ErrValidation)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := CreditInTx(ctx, tx, userID, amountCents, reason, idempotencyKey)
	if err != nil {
		return 0, err
	}

	return newBalance, tx.Commit()
}

// Debit decreases the fiat balance, failing with ErrInsufficientFunds when
// the wallet cannot cover the amount.
func (r *Repository) Debit(ctx context.Context, userID int, amountCents int64, reason string) (int64, error) {
	if amountCents <= 0 {
		return 0, fmt.Errorf("%w: debit amount must be positive", api.ErrValidation)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := DebitInTx(ctx, tx, userID, amountCents, reason)
	if err != nil {
		return 0, err
	}

	return newBalance, tx.Commit()
}

func (r *Repository) Transactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, user_id, amount_cents, type, reason, balance_after, idempotency_key, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []Transaction{}
	}

	return txs, nil
}

// lockWallet takes the row lock that serializes all mutations of one
// wallet, creating the row if the user has never held a balance.
func lockWallet(ctx context.Context, tx *sqlx.Tx, userID int) (*Wallet, error) {
	var w Wallet
	err := tx.QueryRowxContext(ctx,
		`SELECT id, user_id, fiat_balance_cents, ticket_balance, version, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, fiat_balance_cents, ticket_balance, version, created_at, updated_at`,
		userID,
	).StructScan(&w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func applyFiat(ctx context.Context, tx *sqlx.Tx, w *Wallet, amountCents int64, txType, reason, idempotencyKey string) (int64, error) {
	newBalance := w.FiatBalanceCents + amountCents
	if newBalance < 0 {
		return 0, fmt.Errorf("%w: balance %d, requested %d", api.ErrInsufficientFunds, w.FiatBalanceCents, -amountCents)
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE wallets
		 SET fiat_balance_cents = $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return 0, err
	}

	var key interface{}
	if idempotencyKey != "" {
		key = idempotencyKey
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (user_id, amount_cents, type, reason, balance_after, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		w.UserID, amountCents, txType, reason, newBalance, key,
	)
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

// CreditInTx credits a wallet inside a caller-owned transaction so sibling
// repositories can join ledger mutations into their own atomic units.
func CreditInTx(ctx context.Context, tx *sqlx.Tx, userID int, amountCents int64, reason, idempotencyKey string) (int64, error) {
	if amountCents <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", api.ErrValidation)
	}

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	if idempotencyKey != "" {
		var prior int64
		err = tx.GetContext(ctx, &prior,
			`SELECT balance_after FROM wallet_transactions WHERE idempotency_key = $1`,
			idempotencyKey,
		)
		if err == nil {
			// Replayed delivery: return the committed outcome.
			return prior, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
	}

	return applyFiat(ctx, tx, w, amountCents, TypeCredit, reason, idempotencyKey)
}

// DebitInTx debits a wallet inside a caller-owned transaction.
func DebitInTx(ctx context.Context, tx *sqlx.Tx, userID int, amountCents int64, reason string) (int64, error) {
	if amountCents <= 0 {
		return 0, fmt.Errorf("%w: debit amount must be positive", api.ErrValidation)
	}

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	return applyFiat(ctx, tx, w, -amountCents, TypeDebit, reason, "")
}

// AddTicketUnitsInTx bumps the wallet's ticket unit counter, creating the
// wallet row for a user who has never held a fiat balance. Free claims hit
// that path; paid purchases already hold the row lock from the debit.
func AddTicketUnitsInTx(ctx context.Context, tx *sqlx.Tx, userID int, units int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (user_id, ticket_balance)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET ticket_balance = wallets.ticket_balance + EXCLUDED.ticket_balance,
		     version = wallets.version + 1, updated_at = NOW()`,
		userID, units,
	)
	return err
}
