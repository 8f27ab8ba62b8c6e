// Package authz is the single place admin capability is decided. Callers
// depend on the Policy interface; the backing strategies (role table,
// emergency allow-list) are combined by OR and can be swapped without
// touching any caller.
package authz

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type Policy interface {
	IsAdmin(ctx context.Context, userID int) (bool, error)
}

// RoleTable grants admin to users whose role column says so.
type RoleTable struct {
	db *sqlx.DB
}

func NewRoleTable(db *sqlx.DB) *RoleTable {
	return &RoleTable{db: db}
}

func (p *RoleTable) IsAdmin(ctx context.Context, userID int) (bool, error) {
	var role string
	err := p.db.GetContext(ctx, &role, `SELECT role FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return role == "admin", nil
}

// AllowList grants admin to a fixed set of user IDs from configuration,
// the break-glass path when the role table is unavailable or wrong.
type AllowList struct {
	ids map[int]struct{}
}

func NewAllowList(userIDs []int) *AllowList {
	ids := make(map[int]struct{}, len(userIDs))
	for _, id := range userIDs {
		ids[id] = struct{}{}
	}
	return &AllowList{ids: ids}
}

func (p *AllowList) IsAdmin(_ context.Context, userID int) (bool, error) {
	_, ok := p.ids[userID]
	return ok, nil
}

// Any grants admin if any strategy does. Strategy errors are returned
// only when no strategy granted access.
type Any struct {
	policies []Policy
}

func NewAny(policies ...Policy) *Any {
	return &Any{policies: policies}
}

func (p *Any) IsAdmin(ctx context.Context, userID int) (bool, error) {
	var firstErr error
	for _, policy := range p.policies {
		ok, err := policy.IsAdmin(ctx, userID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, firstErr
}
