package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// SessionFilters defines list filters.
type SessionFilters struct {
	Workspace string
	Limit     int
}

// SessionRepo handles session rows.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Insert(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO sessions(id, workspace, file_count, started_at, cycles)
	VALUES(?, ?, ?, ?, ?);
	`,
		s.ID, s.Workspace, s.FileCount, s.StartedAt, s.Cycles)
	return err
}

// End stamps a session with its outcome. Ending an already ended session
// overwrites the outcome, which only happens if the caller misuses ids.
func (r *SessionRepo) End(ctx context.Context, id, reason string, cycles int, endedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, end_reason = ?, cycles = ? WHERE id = ?`,
		endedAt, reason, cycles, id)
	return err
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, workspace, file_count, started_at, ended_at, end_reason, cycles FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) List(ctx context.Context, f SessionFilters) ([]Session, error) {
	var where []string
	var args []interface{}

	if f.Workspace != "" {
		where = append(where, "workspace = ?")
		args = append(args, f.Workspace)
	}

	query := "SELECT id, workspace, file_count, started_at, ended_at, end_reason, cycles FROM sessions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// scanSession handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (Session, error) {
	var s Session
	var ended sql.NullTime
	var reason sql.NullString
	if err := row.Scan(&s.ID, &s.Workspace, &s.FileCount, &s.StartedAt, &ended, &reason, &s.Cycles); err != nil {
		return Session{}, err
	}
	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	if reason.Valid {
		s.EndReason = &reason.String
	}
	return s, nil
}
