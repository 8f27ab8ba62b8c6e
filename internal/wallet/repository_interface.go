package wallet

import "context"

type Ledger interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)
	Credit(ctx context.Context, userID int, amountCents int64, reason, idempotencyKey string) (int64, error)
	Debit(ctx context.Context, userID int, amountCents int64, reason string) (int64, error)
	Transactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
}
