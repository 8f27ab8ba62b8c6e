package draw

import (
	"context"
	"fmt"

	"prizedraw/internal/api"
	"prizedraw/internal/audit"
	"prizedraw/internal/giveaway"
	"prizedraw/internal/metrics"
	"prizedraw/internal/notify"
	"prizedraw/internal/ticket"
)

type Service interface {
	DraftWinner(ctx context.Context, giveawayID, actorID int) (*giveaway.Giveaway, error)
	RepickWinner(ctx context.Context, giveawayID, actorID int) (*giveaway.Giveaway, error)
	FinalizeWinner(ctx context.Context, giveawayID, actorID int) (*giveaway.Giveaway, error)
	ClaimPrize(ctx context.Context, giveawayID, userID int) error
}

type service struct {
	repo         Repo
	giveawayRepo giveaway.Repo
	ticketRepo   ticket.Repo
	auditLog     audit.Log
	dispatcher   notify.Dispatcher
}

func NewService(repo Repo, giveawayRepo giveaway.Repo, ticketRepo ticket.Repo, auditLog audit.Log, dispatcher notify.Dispatcher) Service {
	return &service{
		repo:         repo,
		giveawayRepo: giveawayRepo,
		ticketRepo:   ticketRepo,
		auditLog:     auditLog,
		dispatcher:   dispatcher,
	}
}

func (s *service) DraftWinner(ctx context.Context, giveawayID, actorID int) (*giveaway.Giveaway, error) {
	g, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.Status != giveaway.StatusEnded {
		return nil, fmt.Errorf("%w: cannot draw for giveaway in status %q", api.ErrStateConflict, g.Status)
	}

	entries, err := s.ticketRepo.EntriesForGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	pick, err := pickWinner(entries)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetDraftWinner(ctx, giveawayID, actorID, pick); err != nil {
		return nil, err
	}

	metrics.RecordDraw("draft")
	return s.giveawayRepo.GetByID(ctx, giveawayID)
}

// RepickWinner re-runs the draw excluding the rejected draft winner,
// unless they hold the entire pool.
func (s *service) RepickWinner(ctx context.Context, giveawayID, actorID int) (*giveaway.Giveaway, error) {
	g, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.Status != giveaway.StatusReviewPending {
		return nil, fmt.Errorf("%w: cannot repick for giveaway in status %q", api.ErrStateConflict, g.Status)
	}
	if g.TempWinnerID == nil {
		return nil, fmt.Errorf("%w: no draft winner to replace", api.ErrStateConflict)
	}

	entries, err := s.ticketRepo.EntriesForGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	pick, err := pickWinner(excludeUser(entries, *g.TempWinnerID))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Repick(ctx, giveawayID, actorID, *g.TempWinnerID, pick); err != nil {
		return nil, err
	}

	metrics.RecordDraw("repick")
	return s.giveawayRepo.GetByID(ctx, giveawayID)
}

func (s *service) FinalizeWinner(ctx context.Context, giveawayID, actorID int) (*giveaway.Giveaway, error) {
	g, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.Status != giveaway.StatusReviewPending {
		return nil, fmt.Errorf("%w: cannot finalize giveaway in status %q", api.ErrStateConflict, g.Status)
	}
	if g.TempWinnerID == nil {
		return nil, fmt.Errorf("%w: no draft winner to finalize", api.ErrStateConflict)
	}

	if err := s.repo.Finalize(ctx, giveawayID, actorID, *g.TempWinnerID, g.EscrowAmountCents); err != nil {
		return nil, err
	}

	metrics.RecordEscrowReleased(g.EscrowAmountCents)

	// Notification is fire-and-forget: delivery is the dispatcher's
	// concern and never part of the financial transaction.
	s.dispatcher.WinnerFinalized(ctx, giveawayID, *g.TempWinnerID, g.Title, g.EscrowAmountCents)

	return s.giveawayRepo.GetByID(ctx, giveawayID)
}

// ClaimPrize records the winner acknowledging their win. Funds move only
// at finalize; this is an audit event.
func (s *service) ClaimPrize(ctx context.Context, giveawayID, userID int) error {
	g, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return err
	}

	isWinner := (g.WinnerID != nil && *g.WinnerID == userID) ||
		(g.TempWinnerID != nil && *g.TempWinnerID == userID)
	if !isWinner {
		return fmt.Errorf("%w: caller is not the winner of giveaway %d", api.ErrForbidden, giveawayID)
	}

	_, err = s.auditLog.Append(ctx, giveawayID, userID, &userID, audit.ActionWinnerClaimed, "winner acknowledged prize")
	return err
}
