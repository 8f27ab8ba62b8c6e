package donation

import (
	"context"

	"prizedraw/internal/giveaway"
)

type Repo interface {
	Donate(ctx context.Context, g *giveaway.Giveaway, userID int, amountCents, platformCents, creatorCents, prizeCents int64) (*Result, error)
	ListForGiveaway(ctx context.Context, giveawayID, limit, offset int) ([]Contribution, error)
}
