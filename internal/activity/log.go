// Package activity keeps an append-only log of user events (signup, login,
// session start/finish). It backs the profile page's recent-activity view.
package activity

import (
	"context"
	"database/sql"
	"time"
)

const (
	TypeSignup          = "signup"
	TypeLogin           = "login"
	TypeSessionStarted  = "session_started"
	TypeSessionFinished = "session_finished"
	TypeJobApplied      = "job_applied"
)

type Event struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Record(ctx context.Context, userID int64, typ, detail string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO event_log (user_id, typ, detail, created_at) VALUES ($1,$2,$3,$4)`,
		userID, typ, detail, time.Now().Unix())
	return err
}

// Recent returns the newest events for a user, newest first.
func (l *Log) Recent(ctx context.Context, userID int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, user_id, typ, detail, created_at FROM event_log
		 WHERE user_id=$1 ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Detail, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
