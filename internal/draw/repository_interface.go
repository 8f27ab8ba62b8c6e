package draw

import "context"

type Repo interface {
	SetDraftWinner(ctx context.Context, giveawayID, actorID int, pick *Pick) error
	Repick(ctx context.Context, giveawayID, actorID, previousWinnerID int, pick *Pick) error
	Finalize(ctx context.Context, giveawayID, actorID, winnerID int, escrowCents int64) error
}
