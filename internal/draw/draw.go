package draw

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"prizedraw/internal/api"
	"prizedraw/internal/ticket"
)

// Pick holds one completed draw: the selected user, the unit that won and
// the pool size, enough to verify the draw independently.
type Pick struct {
	WinnerID   int
	UnitIndex  int64
	TotalUnits int64
}

// pickWinner draws one ticket unit uniformly at random from the weighted
// pool. Each entry contributes Units equally-likely chances, so a holder
// of 9 units is nine times as likely to win as a holder of 1.
func pickWinner(entries []ticket.Entry) (*Pick, error) {
	var total int64
	for _, e := range entries {
		if e.Units > 0 {
			total += int64(e.Units)
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no ticket entries to draw from", api.ErrValidation)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(total))
	if err != nil {
		return nil, err
	}
	idx := n.Int64()

	var cursor int64
	for _, e := range entries {
		if e.Units <= 0 {
			continue
		}
		cursor += int64(e.Units)
		if idx < cursor {
			return &Pick{WinnerID: e.UserID, UnitIndex: idx, TotalUnits: total}, nil
		}
	}

	// Unreachable: cursor covers [0, total).
	return nil, fmt.Errorf("draw walked past the end of the pool")
}

// excludeUser drops one user's entries from the pool. Used on repick so a
// rejected draft winner cannot immediately win again, unless they are the
// only entrant.
func excludeUser(entries []ticket.Entry, userID int) []ticket.Entry {
	out := make([]ticket.Entry, 0, len(entries))
	for _, e := range entries {
		if e.UserID != userID {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return entries
	}
	return out
}
