// Package session drives the interview/test state machine: start, current
// question, answer submission, and finish.
//
// The two modes share one machine but finish differently: an interview
// completes automatically when the last answer is recorded, while a test
// stays in progress until an explicit finish call. That asymmetry is kept on
// purpose.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/careermate/careermate/internal/feedback"
	"github.com/careermate/careermate/internal/questionbank"
	"github.com/careermate/careermate/internal/scoring"
)

// Config carries the mode-specific batch sizes.
type Config struct {
	InterviewQuestions int
	TestQuestions      int
}

type Service struct {
	store  Store
	bank   questionbank.Store
	scorer scoring.Scorer
	gen    feedback.Generator // optional; nil keeps template feedback
	cfg    Config
	now    func() time.Time
}

func NewService(store Store, bank questionbank.Store, scorer scoring.Scorer, gen feedback.Generator, cfg Config) *Service {
	if cfg.InterviewQuestions <= 0 {
		cfg.InterviewQuestions = 7
	}
	if cfg.TestQuestions <= 0 {
		cfg.TestQuestions = 10
	}
	return &Service{store: store, bank: bank, scorer: scorer, gen: gen, cfg: cfg, now: time.Now}
}

// SubmitResult is the outcome of one answer submission.
type SubmitResult struct {
	Completed   bool                   // interview only: last answer finished the session
	AllAnswered bool                   // test only: sequence exhausted, finish still pending
	Next        *questionbank.Question `json:"next_question,omitempty"`
	Progress    string                 // "k/n", 1-based question being shown
	Report      *scoring.Report
}

// FinishResult is the outcome of the terminal transition.
type FinishResult struct {
	Score  int
	Total  int
	Report *scoring.Report // interview only
}

// Start creates a session in progress at position 0. Each user holds at most
// one active session per mode; the interview and test slots are independent.
func (s *Service) Start(ctx context.Context, userID, careerID int64, difficulty string, mode Mode) (Session, []questionbank.Question, error) {
	if userID == 0 {
		return Session{}, nil, ErrUnauthorized
	}
	if mode != ModeInterview && mode != ModeTest {
		return Session{}, nil, fmt.Errorf("unknown mode %q", mode)
	}
	if difficulty == "" {
		difficulty = questionbank.DifficultyBeginner
	}

	if _, err := s.store.ActiveFor(ctx, userID, mode); err == nil {
		return Session{}, nil, ErrActiveSession
	} else if err != ErrNotFound {
		return Session{}, nil, err
	}

	count := s.cfg.InterviewQuestions
	if mode == ModeTest {
		count = s.cfg.TestQuestions
	}
	questions, err := s.bank.QuestionsFor(ctx, careerID, difficulty, count)
	if err != nil {
		return Session{}, nil, err
	}

	sess := Session{
		UserID:     userID,
		CareerID:   careerID,
		Mode:       mode,
		Difficulty: difficulty,
		Status:     StatusInProgress,
		StartedAt:  s.now().UTC(),
	}
	for _, q := range questions {
		sess.QuestionIDs = append(sess.QuestionIDs, q.ID)
	}
	if err := s.store.Create(ctx, &sess); err != nil {
		return Session{}, nil, err
	}
	return sess, questions, nil
}

// Active returns the caller's in-progress session for a mode.
func (s *Service) Active(ctx context.Context, userID int64, mode Mode) (Session, error) {
	if userID == 0 {
		return Session{}, ErrUnauthorized
	}
	return s.store.ActiveFor(ctx, userID, mode)
}

// Get returns a session the caller owns.
func (s *Service) Get(ctx context.Context, userID, sessionID int64) (Session, error) {
	return s.getOwned(ctx, userID, sessionID)
}

// CurrentQuestion returns the question at the current position.
func (s *Service) CurrentQuestion(ctx context.Context, userID, sessionID int64) (questionbank.Question, string, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return questionbank.Question{}, "", err
	}
	if sess.Complete() {
		return questionbank.Question{}, "", ErrAlreadyCompleted
	}
	if sess.Position >= len(sess.QuestionIDs) {
		return questionbank.Question{}, "", ErrSessionComplete
	}
	q, err := s.bank.Get(ctx, sess.QuestionIDs[sess.Position])
	if err != nil {
		return questionbank.Question{}, "", err
	}
	return q, progress(sess.Position+1, len(sess.QuestionIDs)), nil
}

// SubmitInterviewAnswer records one interview answer and advances the
// position. Recording the final answer finishes the session in the same call
// and returns the report; there is no separate finish step for the caller.
func (s *Service) SubmitInterviewAnswer(ctx context.Context, userID, sessionID int64, text string, isAudio bool, audioKey string) (SubmitResult, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if sess.Mode != ModeInterview {
		return SubmitResult{}, ErrNotFound
	}
	if sess.Complete() {
		return SubmitResult{}, ErrAlreadyCompleted
	}
	if sess.Position >= len(sess.QuestionIDs) {
		return SubmitResult{}, ErrSessionComplete
	}

	text = strings.TrimSpace(text)
	// audio answers may carry no transcript
	if text == "" && !isAudio {
		return SubmitResult{}, ErrEmptyAnswer
	}

	a := Answer{
		SessionID:  sess.ID,
		QuestionID: sess.QuestionIDs[sess.Position],
		Text:       text,
		IsAudio:    isAudio,
		AudioKey:   audioKey,
		AnsweredAt: s.now().UTC(),
	}
	newPos := sess.Position + 1
	if err := s.store.AppendAnswer(ctx, a, newPos); err != nil {
		return SubmitResult{}, err
	}

	if newPos == len(sess.QuestionIDs) {
		report, err := s.finishInterview(ctx, sess)
		if err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{Completed: true, Report: &report}, nil
	}

	next, err := s.bank.Get(ctx, sess.QuestionIDs[newPos])
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Next: &next, Progress: progress(newPos+1, len(sess.QuestionIDs))}, nil
}

// SubmitTestAnswer records one test answer for the question at the current
// position. Correctness comes from the caller; the session only counts it.
func (s *Service) SubmitTestAnswer(ctx context.Context, userID, sessionID, questionID int64, text string, isCorrect bool) (SubmitResult, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if sess.Mode != ModeTest {
		return SubmitResult{}, ErrNotFound
	}
	if sess.Complete() {
		return SubmitResult{}, ErrAlreadyCompleted
	}
	if sess.Position >= len(sess.QuestionIDs) {
		return SubmitResult{}, ErrSessionComplete
	}
	if questionID != sess.QuestionIDs[sess.Position] {
		return SubmitResult{}, ErrWrongQuestion
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SubmitResult{}, ErrEmptyAnswer
	}

	a := Answer{
		SessionID:  sess.ID,
		QuestionID: questionID,
		Text:       text,
		IsCorrect:  &isCorrect,
		AnsweredAt: s.now().UTC(),
	}
	newPos := sess.Position + 1
	if err := s.store.AppendAnswer(ctx, a, newPos); err != nil {
		return SubmitResult{}, err
	}

	if newPos == len(sess.QuestionIDs) {
		// the test stays in progress until the explicit finish call
		return SubmitResult{AllAnswered: true, Progress: progress(newPos, len(sess.QuestionIDs))}, nil
	}
	next, err := s.bank.Get(ctx, sess.QuestionIDs[newPos])
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Next: &next, Progress: progress(newPos+1, len(sess.QuestionIDs))}, nil
}

// Finish performs the terminal transition. For tests this is the normal end
// of the flow; for interviews it covers abandoning early, scoring whatever
// was answered. A second call fails with ErrAlreadyCompleted.
func (s *Service) Finish(ctx context.Context, userID, sessionID int64) (FinishResult, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return FinishResult{}, err
	}
	if sess.Complete() {
		return FinishResult{}, ErrAlreadyCompleted
	}

	if sess.Mode == ModeTest {
		answers, err := s.store.Answers(ctx, sess.ID)
		if err != nil {
			return FinishResult{}, err
		}
		correct := make([]bool, 0, len(answers))
		for _, a := range answers {
			correct = append(correct, a.IsCorrect != nil && *a.IsCorrect)
		}
		score := scoring.TestScore(correct)
		if err := s.store.Complete(ctx, sess.ID, s.now().UTC(), float64(score), nil); err != nil {
			return FinishResult{}, err
		}
		return FinishResult{Score: score, Total: len(sess.QuestionIDs)}, nil
	}

	report, err := s.finishInterview(ctx, sess)
	if err != nil {
		return FinishResult{}, err
	}
	return FinishResult{Score: report.OverallScore, Total: len(sess.QuestionIDs), Report: &report}, nil
}

// ResultRow pairs a recorded test answer with its question text.
type ResultRow struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
}

// Results returns the per-question breakdown of a session the caller owns.
func (s *Service) Results(ctx context.Context, userID, sessionID int64) (Session, []ResultRow, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	answers, err := s.store.Answers(ctx, sess.ID)
	if err != nil {
		return Session{}, nil, err
	}
	rows := make([]ResultRow, 0, len(answers))
	for _, a := range answers {
		q, err := s.bank.Get(ctx, a.QuestionID)
		if err != nil {
			return Session{}, nil, err
		}
		rows = append(rows, ResultRow{
			Question:  q.Text,
			Answer:    a.Text,
			IsCorrect: a.IsCorrect != nil && *a.IsCorrect,
		})
	}
	return sess, rows, nil
}

// List returns session history. Callers are expected to have scoped
// opts.UserID already; handlers force it to the subject for non-admins.
func (s *Service) List(ctx context.Context, opts ListOpts) ([]Session, error) {
	return s.store.List(ctx, opts)
}

func (s *Service) finishInterview(ctx context.Context, sess Session) (scoring.Report, error) {
	answers, err := s.store.Answers(ctx, sess.ID)
	if err != nil {
		return scoring.Report{}, err
	}
	texts := make([]string, 0, len(answers))
	for _, a := range answers {
		texts = append(texts, a.Text)
	}
	report := s.scorer.Score(texts)
	if s.gen != nil {
		if enriched, err := s.gen.Enrich(ctx, report, texts); err == nil {
			report = enriched
		} else {
			log.Printf("feedback enrichment failed, keeping templates: %v", err)
		}
	}
	buf, err := json.Marshal(report)
	if err != nil {
		return scoring.Report{}, err
	}
	if err := s.store.Complete(ctx, sess.ID, s.now().UTC(), float64(report.OverallScore), buf); err != nil {
		return scoring.Report{}, err
	}
	return report, nil
}

func (s *Service) getOwned(ctx context.Context, userID, sessionID int64) (Session, error) {
	if userID == 0 {
		return Session{}, ErrUnauthorized
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	// hide other users' sessions entirely
	if sess.UserID != userID {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func progress(current, total int) string {
	return fmt.Sprintf("%d/%d", current, total)
}
