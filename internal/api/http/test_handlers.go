package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careermate/careermate/internal/activity"
	auth "github.com/careermate/careermate/internal/auth/middleware"
	"github.com/careermate/careermate/internal/session"
)

// POST /tests  { "career_id": 1, "difficulty": "beginner" }
func StartTestHandler(svc *session.Service, events *activity.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CareerID   int64  `json:"career_id"`
			Difficulty string `json:"difficulty"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		uid := auth.UserIDFromContext(r.Context())
		sess, questions, err := svc.Start(r.Context(), uid, req.CareerID, req.Difficulty, session.ModeTest)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = events.Record(r.Context(), uid, activity.TypeSessionStarted, "test")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session_id":      sess.ID,
			"first_question":  questions[0],
			"total_questions": len(questions),
		})
	}
}

// GET /tests/active
func ActiveTestHandler(svc *session.Service) http.HandlerFunc {
	return activeSession(svc, session.ModeTest)
}

// GET /tests/{sessionID}/question
func CurrentTestQuestionHandler(svc *session.Service) http.HandlerFunc {
	return currentQuestion(svc)
}

// POST /tests/{sessionID}/answers  { "question_id": 3, "answer": "...", "is_correct": true }
//
// Correctness is asserted by the client against the choices it rendered; the
// server records it as-is.
func SubmitTestAnswerHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		var req struct {
			QuestionID int64  `json:"question_id"`
			Answer     string `json:"answer"`
			IsCorrect  bool   `json:"is_correct"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		uid := auth.UserIDFromContext(r.Context())
		res, err := svc.SubmitTestAnswer(r.Context(), uid, id, req.QuestionID, req.Answer, req.IsCorrect)
		if err != nil {
			writeErr(w, err)
			return
		}
		if res.AllAnswered {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"all_answered": true,
				"progress":     res.Progress,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"next_question": res.Next,
			"progress":      res.Progress,
		})
	}
}

// POST /tests/{sessionID}/finish
func FinishTestHandler(svc *session.Service, events *activity.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		uid := auth.UserIDFromContext(r.Context())
		res, err := svc.Finish(r.Context(), uid, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = events.Record(r.Context(), uid, activity.TypeSessionFinished, "test")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "completed",
			"score":  res.Score,
			"total":  res.Total,
		})
	}
}

// GET /tests/{sessionID}/results
func TestResultsHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		sess, rows, err := svc.Results(r.Context(), auth.UserIDFromContext(r.Context()), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session":   sess,
			"questions": rows,
		})
	}
}
