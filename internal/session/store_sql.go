package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/careermate/careermate/internal/scoring"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, sess *Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO sessions (user_id, career_id, mode, difficulty, status, position, started_at)
		 VALUES ($1,$2,$3,$4,$5,0,$6) RETURNING id`,
		sess.UserID, sess.CareerID, string(sess.Mode), sess.Difficulty,
		string(StatusInProgress), sess.StartedAt.Unix()).Scan(&sess.ID)
	if err != nil {
		return err
	}
	for i, qid := range sess.QuestionIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_questions (session_id, question_id, ord) VALUES ($1,$2,$3)`,
			sess.ID, qid, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, career_id, mode, difficulty, status, position, started_at, ended_at, score, report_json
		 FROM sessions WHERE id=$1`, id)
	sess, err := scanSession(row)
	if err != nil {
		return Session{}, err
	}
	if err := s.loadQuestionIDs(ctx, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) ActiveFor(ctx context.Context, userID int64, mode Mode) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, career_id, mode, difficulty, status, position, started_at, ended_at, score, report_json
		 FROM sessions WHERE user_id=$1 AND mode=$2 AND status=$3 ORDER BY id DESC LIMIT 1`,
		userID, string(mode), string(StatusInProgress))
	sess, err := scanSession(row)
	if err != nil {
		return Session{}, err
	}
	if err := s.loadQuestionIDs(ctx, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// AppendAnswer commits the answer row and the position advance in one
// transaction, so a session can never point past answers it does not have.
func (s *SQLStore) AppendAnswer(ctx context.Context, a Answer, newPosition int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var correct interface{}
	if a.IsCorrect != nil {
		correct = boolToInt(*a.IsCorrect)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO answers (session_id, question_id, answer_text, is_audio, audio_key, is_correct, answered_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.SessionID, a.QuestionID, a.Text, boolToInt(a.IsAudio), a.AudioKey, correct, a.AnsweredAt.Unix()); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET position=$1 WHERE id=$2 AND status=$3 AND position=$4`,
		newPosition, a.SessionID, string(StatusInProgress), newPosition-1)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish a finished session from a raced position
		var status string
		if err := tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id=$1`, a.SessionID).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if status == string(StatusCompleted) {
			return ErrAlreadyCompleted
		}
		return ErrConflict
	}
	return tx.Commit()
}

func (s *SQLStore) Answers(ctx context.Context, sessionID int64) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, question_id, answer_text, is_audio, audio_key, is_correct, answered_at
		 FROM answers WHERE session_id=$1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var a Answer
		var isAudio int
		var correct sql.NullInt64
		var answeredAt int64
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.Text, &isAudio, &a.AudioKey, &correct, &answeredAt); err != nil {
			return nil, err
		}
		a.IsAudio = isAudio != 0
		if correct.Valid {
			c := correct.Int64 != 0
			a.IsCorrect = &c
		}
		a.AnsweredAt = time.Unix(answeredAt, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) Complete(ctx context.Context, id int64, endedAt time.Time, score float64, reportJSON []byte) error {
	var report interface{}
	if len(reportJSON) > 0 {
		report = string(reportJSON)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status=$1, ended_at=$2, score=$3, report_json=$4 WHERE id=$5 AND status=$6`,
		string(StatusCompleted), endedAt.Unix(), score, report, id, string(StatusInProgress))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		if err := s.db.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id=$1`, id).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		return ErrAlreadyCompleted
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Session, error) {
	var where []string
	var args []interface{}
	if opts.UserID != 0 {
		args = append(args, opts.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if opts.Mode != "" {
		args = append(args, string(opts.Mode))
		where = append(where, fmt.Sprintf("mode=$%d", len(args)))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	q := fmt.Sprintf(
		`SELECT id, user_id, career_id, mode, difficulty, status, position, started_at, ended_at, score, report_json
		 FROM sessions WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		cond, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadQuestionIDs(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) loadQuestionIDs(ctx context.Context, sess *Session) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id FROM session_questions WHERE session_id=$1 ORDER BY ord`, sess.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var qid int64
		if err := rows.Scan(&qid); err != nil {
			return err
		}
		sess.QuestionIDs = append(sess.QuestionIDs, qid)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var mode, status string
	var startedAt int64
	var endedAt sql.NullInt64
	var scoreF sql.NullFloat64
	var report sql.NullString
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.CareerID, &mode, &sess.Difficulty,
		&status, &sess.Position, &startedAt, &endedAt, &scoreF, &report); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	sess.Mode = Mode(mode)
	sess.Status = Status(status)
	sess.StartedAt = time.Unix(startedAt, 0).UTC()
	if endedAt.Valid {
		t := time.Unix(endedAt.Int64, 0).UTC()
		sess.EndedAt = &t
	}
	if scoreF.Valid {
		v := scoreF.Float64
		sess.Score = &v
	}
	if report.Valid && report.String != "" {
		var r scoring.Report
		if err := json.Unmarshal([]byte(report.String), &r); err == nil {
			sess.Report = &r
		}
	}
	return sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
