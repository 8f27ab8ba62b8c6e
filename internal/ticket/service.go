package ticket

import (
	"context"
	"fmt"

	"prizedraw/internal/api"
	"prizedraw/internal/giveaway"
	"prizedraw/internal/metrics"
)

type Service interface {
	Buy(ctx context.Context, giveawayID, userID, quantity int) (*Purchase, error)
	ClaimFree(ctx context.Context, giveawayID, userID int) (*FreeClaim, error)
	ListMine(ctx context.Context, userID, limit, offset int) ([]Ticket, error)
}

type service struct {
	repo         Repo
	giveawayRepo giveaway.Repo
}

func NewService(repo Repo, giveawayRepo giveaway.Repo) Service {
	return &service{repo: repo, giveawayRepo: giveawayRepo}
}

// maxPurchaseQuantity bounds a single purchase. The request quantity is an
// unbounded JSON int; without a cap the cost multiplication can overflow
// int64 and turn a purchase into a credit.
const maxPurchaseQuantity = 100_000

func (s *service) Buy(ctx context.Context, giveawayID, userID, quantity int) (*Purchase, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", api.ErrValidation)
	}
	if quantity > maxPurchaseQuantity {
		return nil, fmt.Errorf("%w: quantity exceeds the per-purchase limit of %d", api.ErrValidation, maxPurchaseQuantity)
	}

	g, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.Status != giveaway.StatusActive {
		return nil, fmt.Errorf("%w: giveaway %d is %s, not accepting entries", api.ErrStateConflict, giveawayID, g.Status)
	}
	if g.TicketPriceCents == 0 {
		return nil, fmt.Errorf("%w: free giveaways accept entries through the free claim", api.ErrValidation)
	}

	if g.MaxTickets != nil {
		sold, err := s.repo.SoldUnits(ctx, giveawayID)
		if err != nil {
			return nil, err
		}
		if sold+quantity > *g.MaxTickets {
			return nil, fmt.Errorf("%w: only %d tickets remain", api.ErrValidation, *g.MaxTickets-sold)
		}
	}

	cost := g.TicketPriceCents * int64(quantity)
	if g.TicketPriceCents > 0 && cost/int64(quantity) != g.TicketPriceCents {
		return nil, fmt.Errorf("%w: ticket cost overflows", api.ErrValidation)
	}
	p, err := s.repo.Purchase(ctx, giveawayID, userID, quantity, cost)
	if err != nil {
		return nil, err
	}

	metrics.RecordTicketSale(quantity)
	return p, nil
}

func (s *service) ClaimFree(ctx context.Context, giveawayID, userID int) (*FreeClaim, error) {
	g, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.Status != giveaway.StatusActive {
		return nil, fmt.Errorf("%w: giveaway %d is %s, not accepting entries", api.ErrStateConflict, giveawayID, g.Status)
	}

	claim, err := s.repo.ClaimFree(ctx, giveawayID, userID)
	if err != nil {
		return nil, err
	}

	if !claim.Already {
		metrics.RecordTicketSale(1)
	}
	return claim, nil
}

func (s *service) ListMine(ctx context.Context, userID, limit, offset int) ([]Ticket, error) {
	return s.repo.ListForUser(ctx, userID, limit, offset)
}
