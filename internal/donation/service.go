package donation

import (
	"context"
	"fmt"

	"prizedraw/internal/api"
	"prizedraw/internal/giveaway"
	"prizedraw/internal/metrics"
)

type Service interface {
	Donate(ctx context.Context, giveawayID, userID int, amountCents int64, override *giveaway.Split) (*Result, error)
	ListForGiveaway(ctx context.Context, giveawayID, limit, offset int) ([]Contribution, error)
}

type service struct {
	repo         Repo
	giveawayRepo giveaway.Repo
}

func NewService(repo Repo, giveawayRepo giveaway.Repo) Service {
	return &service{repo: repo, giveawayRepo: giveawayRepo}
}

func (s *service) Donate(ctx context.Context, giveawayID, userID int, amountCents int64, override *giveaway.Split) (*Result, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: donation amount must be positive", api.ErrValidation)
	}

	g, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.Status != giveaway.StatusActive {
		return nil, fmt.Errorf("%w: giveaway %d is %s, not accepting donations", api.ErrStateConflict, giveawayID, g.Status)
	}

	// Override splits are validated strictly; only the stored default is
	// ever normalized (at giveaway creation). A caller supplying explicit
	// ratios that do not sum to 1.0 made a mistake worth surfacing.
	split := giveaway.Split{Platform: g.SplitPlatform, Creator: g.SplitCreator, Prize: g.SplitPrize}
	if override != nil {
		if override.Platform < 0 || override.Creator < 0 || override.Prize < 0 {
			return nil, fmt.Errorf("%w: split ratios cannot be negative", api.ErrValidation)
		}
		if !override.IsNormalized() {
			return nil, fmt.Errorf("%w: split ratios must sum to 1.0, got %g", api.ErrValidation, override.Sum())
		}
		split = *override
	}

	platformCents, creatorCents, prizeCents := splitAmount(amountCents, split.Platform, split.Creator)

	res, err := s.repo.Donate(ctx, g, userID, amountCents, platformCents, creatorCents, prizeCents)
	if err != nil {
		return nil, err
	}

	metrics.RecordDonation(amountCents)
	return res, nil
}

func (s *service) ListForGiveaway(ctx context.Context, giveawayID, limit, offset int) ([]Contribution, error) {
	return s.repo.ListForGiveaway(ctx, giveawayID, limit, offset)
}
