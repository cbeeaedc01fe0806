package audit

import (
	"context"
	"database/sql"
)

// Repository persists audit entries in Postgres. Writes are insert-only;
// there is deliberately no update or delete path.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one entry to the log.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO "AuditLog" ("ActorID", "Action", "Target", "Timestamp", "Details", "PreviousValue", "NewValue")
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::jsonb, NULLIF($7, '')::jsonb)
	`, e.ActorID, e.Action, e.Target, e.Timestamp, e.Details, string(e.PreviousValue), string(e.NewValue))
	return err
}

// List returns entries newest first, capped at limit.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT "ActorID", "Action", "Target", "Timestamp", COALESCE("Details", ''), COALESCE("PreviousValue"::text, ''), COALESCE("NewValue"::text, '')
		FROM "AuditLog"
		ORDER BY "Timestamp" DESC, "LogID" DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Entry
	for rows.Next() {
		var e Entry
		var prev, next string
		if err := rows.Scan(&e.ActorID, &e.Action, &e.Target, &e.Timestamp, &e.Details, &prev, &next); err != nil {
			return nil, err
		}
		if prev != "" {
			e.PreviousValue = []byte(prev)
		}
		if next != "" {
			e.NewValue = []byte(next)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
