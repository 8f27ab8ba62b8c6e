package giveaway

import "context"

type Repo interface {
	Create(ctx context.Context, g *Giveaway) (*Giveaway, error)
	GetByID(ctx context.Context, id int) (*Giveaway, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Giveaway, error)
	ExpiredActiveIDs(ctx context.Context) ([]int, error)
	Activate(ctx context.Context, g *Giveaway, mode FundingMode, actorID int) error
	Close(ctx context.Context, id, actorID int) error
	Cancel(ctx context.Context, g *Giveaway, actorID int) error
}
