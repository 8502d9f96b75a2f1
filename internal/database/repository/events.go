package repository

import (
	"context"
	"database/sql"
)

// EventRepo handles activity event rows.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Insert(ctx context.Context, e ActivityEvent) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO activity_events(id, session_id, cycle, step, file, start_line, end_line, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`,
		e.ID, e.SessionID, e.Cycle, e.Step, e.File, e.StartLine, e.EndLine, e.CreatedAt)
	return err
}

// ListBySession returns a session's events in the order they happened.
// Timestamps have second precision, so insertion order breaks ties.
func (r *EventRepo) ListBySession(ctx context.Context, sessionID string) ([]ActivityEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, cycle, step, file, start_line, end_line, created_at
	FROM activity_events
	WHERE session_id = ?
	ORDER BY created_at ASC, rowid ASC;
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityEvent
	for rows.Next() {
		var e ActivityEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Cycle, &e.Step, &e.File,
			&e.StartLine, &e.EndLine, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByStep returns how many times each step ran in a session.
func (r *EventRepo) CountByStep(ctx context.Context, sessionID string) ([]StepCount, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT step, COUNT(*) as n
	FROM activity_events
	WHERE session_id = ?
	GROUP BY step
	ORDER BY n DESC, step ASC;
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StepCount
	for rows.Next() {
		var sc StepCount
		if err := rows.Scan(&sc.Step, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// CountBySession returns the total number of events recorded for a session.
func (r *EventRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var n int
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_events WHERE session_id = ?`, sessionID)
	if err := row.Scan(&n); err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return n, nil
}
