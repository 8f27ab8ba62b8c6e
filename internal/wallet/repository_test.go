package wallet

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"prizedraw/internal/api"
)

func setupWalletMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletRows(id, userID int, fiat int64, tickets int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "fiat_balance_cents", "ticket_balance", "version", "created_at", "updated_at"}).
		AddRow(id, userID, fiat, tickets, 1, time.Now(), time.Now())
}

func TestGetOrCreateWallet_WhenNotExists(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id)")).
		WithArgs(10).
		WillReturnRows(walletRows(5, 10, 0, 0))

	w, err := repo.GetOrCreateWallet(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.Equal(t, int64(0), w.FiatBalanceCents)
}

func TestCredit_Success(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 2000, 0))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(2500), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WithArgs(20, int64(500), TypeCredit, ReasonTopUp, int64(2500), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	newBalance, err := repo.Credit(ctx, 20, 500, ReasonTopUp, "")
	require.NoError(t, err)
	require.Equal(t, int64(2500), newBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredit_IdempotentReplay(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 2500, 0))

	// A ledger row with the key already exists: no mutation, prior outcome
	// returned.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance_after FROM wallet_transactions WHERE idempotency_key = $1")).
		WithArgs("topup-abc").
		WillReturnRows(sqlmock.NewRows([]string{"balance_after"}).AddRow(2500))

	mock.ExpectCommit()

	newBalance, err := repo.Credit(ctx, 20, 500, ReasonTopUp, "topup-abc")
	require.NoError(t, err)
	require.Equal(t, int64(2500), newBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredit_RejectsNonPositiveAmount(t *testing.T) {
	repo, _, close := setupWalletMock(t)
	defer close()

	_, err := repo.Credit(context.Background(), 20, 0, ReasonTopUp, "")
	require.ErrorIs(t, err, api.ErrValidation)

	_, err = repo.Credit(context.Background(), 20, -100, ReasonTopUp, "")
	require.ErrorIs(t, err, api.ErrValidation)
}

func TestDebit_Success(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 2000, 0))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(1500), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WithArgs(20, int64(-500), TypeDebit, ReasonTicketPurchase, int64(1500), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	newBalance, err := repo.Debit(ctx, 20, 500, ReasonTicketPurchase)
	require.NoError(t, err)
	require.Equal(t, int64(1500), newBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_InsufficientFunds(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 300, 0))

	mock.ExpectRollback()

	_, err := repo.Debit(ctx, 20, 500, ReasonTicketPurchase)
	require.ErrorIs(t, err, api.ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_CreatesWalletForNewUser(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id)")).
		WithArgs(99).
		WillReturnRows(walletRows(12, 99, 0, 0))

	mock.ExpectRollback()

	// Fresh wallet has zero balance, so the debit must fail.
	_, err := repo.Debit(ctx, 99, 100, ReasonDonation)
	require.ErrorIs(t, err, api.ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactions_EmptyResultIsNotNil(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions")).
		WithArgs(20, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount_cents", "type", "reason", "balance_after", "idempotency_key", "created_at"}))

	txs, err := repo.Transactions(context.Background(), 20, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, txs)
	require.Empty(t, txs)
}

func TestTransactions_QueryError(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions")).
		WithArgs(20, 10, 0).
		WillReturnError(errors.New("db down"))

	_, err := repo.Transactions(context.Background(), 20, 10, 0)
	require.Error(t, err)
}

func TestDebitInTx_RejectsNonPositiveAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = DebitInTx(context.Background(), tx, 20, 0, ReasonTicketPurchase)
	require.ErrorIs(t, err, api.ErrValidation)

	_, err = DebitInTx(context.Background(), tx, 20, -500, ReasonTicketPurchase)
	require.ErrorIs(t, err, api.ErrValidation)
}

func TestCreditInTx_RejectsNonPositiveAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = CreditInTx(context.Background(), tx, 20, -100, ReasonTopUp, "")
	require.ErrorIs(t, err, api.ErrValidation)
}
