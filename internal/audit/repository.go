package audit

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts a standalone record. Use for informational actions only;
// financial actions must go through InsertInTx so the audit row commits or
// rolls back with the money.
func (r *Repository) Append(ctx context.Context, giveawayID, actorID int, targetID *int, action, note string) (*Record, error) {
	var rec Record
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO audit_records (giveaway_id, actor_id, target_id, action, note)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, giveaway_id, actor_id, target_id, action, note, created_at`,
		giveawayID, actorID, targetID, action, note,
	).StructScan(&rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records for a giveaway, newest first. Plain paged query:
// restartable, no server-side cursor.
func (r *Repository) List(ctx context.Context, giveawayID, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	var recs []Record
	err := r.db.SelectContext(ctx, &recs, `
		SELECT id, giveaway_id, actor_id, target_id, action, note, created_at
		FROM audit_records
		WHERE giveaway_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, giveawayID, limit, offset)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// InsertInTx appends a record inside a caller-owned transaction.
func InsertInTx(ctx context.Context, tx *sqlx.Tx, giveawayID, actorID int, targetID *int, action, note string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_records (giveaway_id, actor_id, target_id, action, note)
		 VALUES ($1, $2, $3, $4, $5)`,
		giveawayID, actorID, targetID, action, note,
	)
	return err
}
