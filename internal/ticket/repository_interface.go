package ticket

import "context"

type Repo interface {
	Purchase(ctx context.Context, giveawayID, userID, quantity int, costCents int64) (*Purchase, error)
	ClaimFree(ctx context.Context, giveawayID, userID int) (*FreeClaim, error)
	EntriesForGiveaway(ctx context.Context, giveawayID int) ([]Entry, error)
	SoldUnits(ctx context.Context, giveawayID int) (int, error)
	ListForUser(ctx context.Context, userID, limit, offset int) ([]Ticket, error)
}
