package session

import (
	"time"

	"github.com/careermate/careermate/internal/scoring"
)

type Mode string

const (
	ModeInterview Mode = "interview"
	ModeTest      Mode = "test"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Session is one run of the interview or test flow, bound to one user. The
// question sequence is fixed at creation; position only moves forward and
// never exceeds the sequence length.
type Session struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	CareerID    int64           `json:"career_id"`
	Mode        Mode            `json:"mode"`
	Difficulty  string          `json:"difficulty"`
	Status      Status          `json:"status"`
	Position    int             `json:"position"`
	QuestionIDs []int64         `json:"question_ids"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
	Score       *float64        `json:"score,omitempty"`
	Report      *scoring.Report `json:"report,omitempty"`
}

// Complete reports whether the session reached its terminal state.
func (s Session) Complete() bool { return s.Status == StatusCompleted }

// Answer is one user response to one question within a session. Answers are
// append-only; they are never mutated after creation.
type Answer struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	QuestionID int64     `json:"question_id"`
	Text       string    `json:"text"`
	IsAudio    bool      `json:"is_audio"`
	AudioKey   string    `json:"audio_key,omitempty"`
	IsCorrect  *bool     `json:"is_correct,omitempty"` // test mode only
	AnsweredAt time.Time `json:"answered_at"`
}
