package giveaway

import (
	"context"
	"fmt"
	"time"

	"prizedraw/internal/api"
	"prizedraw/internal/metrics"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Giveaway, error)
	Get(ctx context.Context, id int) (*Giveaway, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Giveaway, error)
	Activate(ctx context.Context, id, actorID int, mode FundingMode) (*Giveaway, error)
	Close(ctx context.Context, id, actorID int) (bool, error)
	Cancel(ctx context.Context, id, actorID int) (*Giveaway, error)
	CloseExpired(ctx context.Context) (int, error)
}

type CreateRequest struct {
	Title            string    `json:"title" binding:"required" validate:"required,min=3,max=200"`
	CreatorID        int       `json:"-"`
	PrizeAmountCents int64     `json:"prize_amount_cents" validate:"gte=0"`
	TicketPriceCents int64     `json:"ticket_price_cents" validate:"gte=0"`
	Split            *Split    `json:"split,omitempty"`
	MaxTickets       *int      `json:"max_tickets,omitempty"`
	EndsAt           time.Time `json:"ends_at" binding:"required"`
}

type service struct {
	repo Repo
}

func NewService(repo Repo) Service {
	return &service{repo: repo}
}

// systemActorID marks audit rows written by the close sweep rather than a
// human actor.
const systemActorID = 0

func (s *service) Create(ctx context.Context, req CreateRequest) (*Giveaway, error) {
	if req.PrizeAmountCents < 0 {
		return nil, fmt.Errorf("%w: prize amount cannot be negative", api.ErrValidation)
	}
	if req.TicketPriceCents < 0 {
		return nil, fmt.Errorf("%w: ticket price cannot be negative", api.ErrValidation)
	}
	if req.MaxTickets != nil && *req.MaxTickets < 1 {
		return nil, fmt.Errorf("%w: max_tickets must be at least 1", api.ErrValidation)
	}
	if !req.EndsAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: ends_at must be in the future", api.ErrValidation)
	}

	// Stored defaults are normalized here, once, so every later read can
	// rely on the components summing to exactly 1.0.
	split := DefaultSplit
	if req.Split != nil {
		split = req.Split.Normalize()
	}

	g := &Giveaway{
		Title:            req.Title,
		CreatorID:        req.CreatorID,
		PrizeAmountCents: req.PrizeAmountCents,
		TicketPriceCents: req.TicketPriceCents,
		SplitPlatform:    split.Platform,
		SplitCreator:     split.Creator,
		SplitPrize:       split.Prize,
		MaxTickets:       req.MaxTickets,
		EndsAt:           req.EndsAt,
	}

	return s.repo.Create(ctx, g)
}

func (s *service) Get(ctx context.Context, id int) (*Giveaway, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, status Status, limit, offset int) ([]Giveaway, error) {
	return s.repo.List(ctx, status, limit, offset)
}

func (s *service) Activate(ctx context.Context, id, actorID int, mode FundingMode) (*Giveaway, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusDraft {
		return nil, fmt.Errorf("%w: cannot activate giveaway in status %q", api.ErrStateConflict, g.Status)
	}
	if mode == "" {
		mode = FundingEscrowed
	}
	if mode != FundingEscrowed && mode != FundingAdminBypass {
		return nil, fmt.Errorf("%w: unknown funding mode %q", api.ErrValidation, mode)
	}

	if err := s.repo.Activate(ctx, g, mode, actorID); err != nil {
		return nil, err
	}

	metrics.RecordEscrowActivation(string(mode))
	return s.repo.GetByID(ctx, id)
}

// Close is idempotent from the caller's view: closing an already-ended
// giveaway reports changed=false instead of erroring.
func (s *service) Close(ctx context.Context, id, actorID int) (bool, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	switch g.Status {
	case StatusActive:
	case StatusEnded:
		return false, nil
	default:
		return false, fmt.Errorf("%w: cannot close giveaway in status %q", api.ErrStateConflict, g.Status)
	}

	if err := s.repo.Close(ctx, id, actorID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Cancel(ctx context.Context, id, actorID int) (*Giveaway, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.Status.Cancellable() {
		return nil, fmt.Errorf("%w: cannot cancel giveaway in status %q", api.ErrStateConflict, g.Status)
	}

	if err := s.repo.Cancel(ctx, g, actorID); err != nil {
		return nil, err
	}

	metrics.RecordCancellation()
	return s.repo.GetByID(ctx, id)
}

// CloseExpired sweeps active giveaways past their end or sold out. Safe to
// run concurrently from multiple instances: each close is a compare-and-set
// and losers are skipped, not failed.
func (s *service) CloseExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.ExpiredActiveIDs(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, id := range ids {
		if err := s.repo.Close(ctx, id, systemActorID); err != nil {
			continue
		}
		closed++
	}
	return closed, nil
}
