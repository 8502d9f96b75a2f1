package service

import (
	"context"
	"time"

	"github.com/mako34/Hagate/internal/database/repository"
)

// SessionRow pairs a session with its event volume for the sessions table.
type SessionRow struct {
	repository.Session
	Events int
}

// MinutePoint counts events in one minute of a session.
type MinutePoint struct {
	Minute time.Time
	Count  int
}

// SessionOverview is the detail pane for one session.
type SessionOverview struct {
	repository.Session
	Steps  []repository.StepCount
	Events int
	Series []MinutePoint
}

// Stats aggregates recorded history for the sessions view.
type Stats struct {
	Sessions *repository.SessionRepo
	Events   *repository.EventRepo
}

// Recent lists the newest sessions with their event counts.
func (s *Stats) Recent(ctx context.Context, limit int) ([]SessionRow, error) {
	sessions, err := s.Sessions.List(ctx, repository.SessionFilters{Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]SessionRow, 0, len(sessions))
	for _, sess := range sessions {
		n, err := s.Events.CountBySession(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, SessionRow{Session: sess, Events: n})
	}
	return out, nil
}

// Overview assembles step counts and the per-minute series for one session.
// A missing session yields nil.
func (s *Stats) Overview(ctx context.Context, sessionID string) (*SessionOverview, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	steps, err := s.Events.CountByStep(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events, err := s.Events.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionOverview{
		Session: *sess,
		Steps:   steps,
		Events:  len(events),
		Series:  bucketByMinute(events),
	}, nil
}

// bucketByMinute fills gaps so the chart shows quiet minutes as zero.
func bucketByMinute(events []repository.ActivityEvent) []MinutePoint {
	if len(events) == 0 {
		return nil
	}
	counts := make(map[time.Time]int)
	first := events[0].CreatedAt.Truncate(time.Minute)
	last := first
	for _, e := range events {
		m := e.CreatedAt.Truncate(time.Minute)
		counts[m]++
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}
	var out []MinutePoint
	for m := first; !m.After(last); m = m.Add(time.Minute) {
		out = append(out, MinutePoint{Minute: m, Count: counts[m]})
	}
	return out
}
