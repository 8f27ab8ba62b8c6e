package draw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prizedraw/internal/api"
	"prizedraw/internal/audit"
	"prizedraw/internal/giveaway"
	"prizedraw/internal/notify"
	"prizedraw/internal/ticket"
)

type MockDrawRepo struct{ mock.Mock }
type MockGiveawayRepo struct{ mock.Mock }
type MockTicketRepo struct{ mock.Mock }
type MockAuditLog struct{ mock.Mock }

func (m *MockDrawRepo) SetDraftWinner(ctx context.Context, giveawayID, actorID int, pick *Pick) error {
	return m.Called(ctx, giveawayID, actorID, pick).Error(0)
}

func (m *MockDrawRepo) Repick(ctx context.Context, giveawayID, actorID, previousWinnerID int, pick *Pick) error {
	return m.Called(ctx, giveawayID, actorID, previousWinnerID, pick).Error(0)
}

func (m *MockDrawRepo) Finalize(ctx context.Context, giveawayID, actorID, winnerID int, escrowCents int64) error {
	return m.Called(ctx, giveawayID, actorID, winnerID, escrowCents).Error(0)
}

func (m *MockGiveawayRepo) Create(ctx context.Context, g *giveaway.Giveaway) (*giveaway.Giveaway, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giveaway.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepo) GetByID(ctx context.Context, id int) (*giveaway.Giveaway, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giveaway.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepo) List(ctx context.Context, status giveaway.Status, limit, offset int) ([]giveaway.Giveaway, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]giveaway.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepo) ExpiredActiveIDs(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockGiveawayRepo) Activate(ctx context.Context, g *giveaway.Giveaway, mode giveaway.FundingMode, actorID int) error {
	return m.Called(ctx, g, mode, actorID).Error(0)
}

func (m *MockGiveawayRepo) Close(ctx context.Context, id, actorID int) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *MockGiveawayRepo) Cancel(ctx context.Context, g *giveaway.Giveaway, actorID int) error {
	return m.Called(ctx, g, actorID).Error(0)
}

func (m *MockTicketRepo) Purchase(ctx context.Context, giveawayID, userID, quantity int, costCents int64) (*ticket.Purchase, error) {
	args := m.Called(ctx, giveawayID, userID, quantity, costCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Purchase), args.Error(1)
}

func (m *MockTicketRepo) ClaimFree(ctx context.Context, giveawayID, userID int) (*ticket.FreeClaim, error) {
	args := m.Called(ctx, giveawayID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.FreeClaim), args.Error(1)
}

func (m *MockTicketRepo) EntriesForGiveaway(ctx context.Context, giveawayID int) ([]ticket.Entry, error) {
	args := m.Called(ctx, giveawayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.Entry), args.Error(1)
}

func (m *MockTicketRepo) SoldUnits(ctx context.Context, giveawayID int) (int, error) {
	args := m.Called(ctx, giveawayID)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepo) ListForUser(ctx context.Context, userID, limit, offset int) ([]ticket.Ticket, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.Ticket), args.Error(1)
}

func (m *MockAuditLog) Append(ctx context.Context, giveawayID, actorID int, targetID *int, action, note string) (*audit.Record, error) {
	args := m.Called(ctx, giveawayID, actorID, targetID, action, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Record), args.Error(1)
}

func (m *MockAuditLog) List(ctx context.Context, giveawayID, limit, offset int) ([]audit.Record, error) {
	args := m.Called(ctx, giveawayID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Record), args.Error(1)
}

func newTestService(dr *MockDrawRepo, gr *MockGiveawayRepo, tr *MockTicketRepo, al *MockAuditLog) Service {
	return NewService(dr, gr, tr, al, notify.Nop{})
}

func TestDraftWinner(t *testing.T) {
	t.Run("draws from ended giveaway", func(t *testing.T) {
		dr := new(MockDrawRepo)
		gr := new(MockGiveawayRepo)
		tr := new(MockTicketRepo)

		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{ID: 1, Status: giveaway.StatusEnded}, nil)
		tr.On("EntriesForGiveaway", mock.Anything, 1).Return([]ticket.Entry{{UserID: 7, Units: 4}}, nil)
		dr.On("SetDraftWinner", mock.Anything, 1, 5, mock.AnythingOfType("*draw.Pick")).Return(nil)

		svc := newTestService(dr, gr, tr, new(MockAuditLog))
		_, err := svc.DraftWinner(context.Background(), 1, 5)
		assert.NoError(t, err)

		pick := dr.Calls[0].Arguments.Get(3).(*Pick)
		assert.Equal(t, 7, pick.WinnerID)
		assert.Equal(t, int64(4), pick.TotalUnits)
	})

	t.Run("active giveaway cannot be drawn", func(t *testing.T) {
		dr := new(MockDrawRepo)
		gr := new(MockGiveawayRepo)
		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{ID: 1, Status: giveaway.StatusActive}, nil)

		svc := newTestService(dr, gr, new(MockTicketRepo), new(MockAuditLog))
		_, err := svc.DraftWinner(context.Background(), 1, 5)
		assert.ErrorIs(t, err, api.ErrStateConflict)
		dr.AssertNotCalled(t, "SetDraftWinner")
	})

	t.Run("no entries", func(t *testing.T) {
		dr := new(MockDrawRepo)
		gr := new(MockGiveawayRepo)
		tr := new(MockTicketRepo)

		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{ID: 1, Status: giveaway.StatusEnded}, nil)
		tr.On("EntriesForGiveaway", mock.Anything, 1).Return([]ticket.Entry{}, nil)

		svc := newTestService(dr, gr, tr, new(MockAuditLog))
		_, err := svc.DraftWinner(context.Background(), 1, 5)
		assert.ErrorIs(t, err, api.ErrValidation)
	})
}

func TestRepickWinner(t *testing.T) {
	t.Run("rejected winner excluded", func(t *testing.T) {
		dr := new(MockDrawRepo)
		gr := new(MockGiveawayRepo)
		tr := new(MockTicketRepo)

		prev := 7
		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{
			ID: 1, Status: giveaway.StatusReviewPending, TempWinnerID: &prev,
		}, nil)
		tr.On("EntriesForGiveaway", mock.Anything, 1).Return([]ticket.Entry{
			{UserID: 7, Units: 100},
			{UserID: 8, Units: 1},
		}, nil)
		dr.On("Repick", mock.Anything, 1, 5, 7, mock.AnythingOfType("*draw.Pick")).Return(nil)

		svc := newTestService(dr, gr, tr, new(MockAuditLog))
		_, err := svc.RepickWinner(context.Background(), 1, 5)
		assert.NoError(t, err)

		// With user 7 excluded, user 8 is the only possible pick despite
		// holding 1 unit of 101.
		pick := dr.Calls[0].Arguments.Get(4).(*Pick)
		assert.Equal(t, 8, pick.WinnerID)
	})

	t.Run("sole entrant can win again", func(t *testing.T) {
		dr := new(MockDrawRepo)
		gr := new(MockGiveawayRepo)
		tr := new(MockTicketRepo)

		prev := 7
		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{
			ID: 1, Status: giveaway.StatusReviewPending, TempWinnerID: &prev,
		}, nil)
		tr.On("EntriesForGiveaway", mock.Anything, 1).Return([]ticket.Entry{{UserID: 7, Units: 2}}, nil)
		dr.On("Repick", mock.Anything, 1, 5, 7, mock.AnythingOfType("*draw.Pick")).Return(nil)

		svc := newTestService(dr, gr, tr, new(MockAuditLog))
		_, err := svc.RepickWinner(context.Background(), 1, 5)
		assert.NoError(t, err)

		pick := dr.Calls[0].Arguments.Get(4).(*Pick)
		assert.Equal(t, 7, pick.WinnerID)
	})

	t.Run("requires a draft winner", func(t *testing.T) {
		gr := new(MockGiveawayRepo)
		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{
			ID: 1, Status: giveaway.StatusReviewPending,
		}, nil)

		svc := newTestService(new(MockDrawRepo), gr, new(MockTicketRepo), new(MockAuditLog))
		_, err := svc.RepickWinner(context.Background(), 1, 5)
		assert.ErrorIs(t, err, api.ErrStateConflict)
	})
}

func TestFinalizeWinner(t *testing.T) {
	t.Run("releases escrow to draft winner", func(t *testing.T) {
		dr := new(MockDrawRepo)
		gr := new(MockGiveawayRepo)

		winner := 7
		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{
			ID: 1, Status: giveaway.StatusReviewPending,
			TempWinnerID: &winner, EscrowAmountCents: 50000,
		}, nil)
		dr.On("Finalize", mock.Anything, 1, 5, 7, int64(50000)).Return(nil)

		svc := newTestService(dr, gr, new(MockTicketRepo), new(MockAuditLog))
		_, err := svc.FinalizeWinner(context.Background(), 1, 5)
		assert.NoError(t, err)
		dr.AssertExpectations(t)
	})

	t.Run("only review_pending can finalize", func(t *testing.T) {
		for _, status := range []giveaway.Status{
			giveaway.StatusDraft, giveaway.StatusActive, giveaway.StatusEnded,
			giveaway.StatusCompleted, giveaway.StatusCancelled,
		} {
			dr := new(MockDrawRepo)
			gr := new(MockGiveawayRepo)
			gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{ID: 1, Status: status}, nil)

			svc := newTestService(dr, gr, new(MockTicketRepo), new(MockAuditLog))
			_, err := svc.FinalizeWinner(context.Background(), 1, 5)
			assert.ErrorIs(t, err, api.ErrStateConflict, "status %s", status)
			dr.AssertNotCalled(t, "Finalize")
		}
	})
}

func TestClaimPrize(t *testing.T) {
	t.Run("winner records claim", func(t *testing.T) {
		gr := new(MockGiveawayRepo)
		al := new(MockAuditLog)

		winner := 7
		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{
			ID: 1, Status: giveaway.StatusCompleted, WinnerID: &winner,
		}, nil)
		al.On("Append", mock.Anything, 1, 7, &winner, audit.ActionWinnerClaimed, mock.AnythingOfType("string")).
			Return(&audit.Record{ID: 1}, nil)

		svc := newTestService(new(MockDrawRepo), gr, new(MockTicketRepo), al)
		err := svc.ClaimPrize(context.Background(), 1, 7)
		assert.NoError(t, err)
	})

	t.Run("non-winner is forbidden", func(t *testing.T) {
		gr := new(MockGiveawayRepo)
		al := new(MockAuditLog)

		winner := 7
		gr.On("GetByID", mock.Anything, 1).Return(&giveaway.Giveaway{
			ID: 1, Status: giveaway.StatusCompleted, WinnerID: &winner,
		}, nil)

		svc := newTestService(new(MockDrawRepo), gr, new(MockTicketRepo), al)
		err := svc.ClaimPrize(context.Background(), 1, 8)
		assert.ErrorIs(t, err, api.ErrForbidden)
		al.AssertNotCalled(t, "Append")
	})
}
