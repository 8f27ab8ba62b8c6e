package audit

import "context"

type Log interface {
	Append(ctx context.Context, giveawayID, actorID int, targetID *int, action, note string) (*Record, error)
	List(ctx context.Context, giveawayID, limit, offset int) ([]Record, error)
}
