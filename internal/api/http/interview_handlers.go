package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/careermate/careermate/internal/activity"
	auth "github.com/careermate/careermate/internal/auth/middleware"
	"github.com/careermate/careermate/internal/session"
	"github.com/careermate/careermate/internal/storage"
)

// POST /interviews  { "career_id": 1, "difficulty": "beginner" }
func StartInterviewHandler(svc *session.Service, events *activity.Log) http.HandlerFunc {
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
		sess, questions, err := svc.Start(r.Context(), uid, req.CareerID, req.Difficulty, session.ModeInterview)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = events.Record(r.Context(), uid, activity.TypeSessionStarted, "interview")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session_id":      sess.ID,
			"first_question":  questions[0],
			"total_questions": len(questions),
		})
	}
}

// GET /interviews/active — the caller's in-progress interview, for resuming
// after a page reload.
func ActiveInterviewHandler(svc *session.Service) http.HandlerFunc {
	return activeSession(svc, session.ModeInterview)
}

// GET /interviews/{sessionID}/question
func CurrentInterviewQuestionHandler(svc *session.Service) http.HandlerFunc {
	return currentQuestion(svc)
}

// POST /interviews/{sessionID}/answers  { "answer": "...", "is_audio": false, "audio_key": "" }
func SubmitInterviewAnswerHandler(svc *session.Service, events *activity.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		var req struct {
			Answer   string `json:"answer"`
			IsAudio  bool   `json:"is_audio"`
			AudioKey string `json:"audio_key"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		uid := auth.UserIDFromContext(r.Context())
		res, err := svc.SubmitInterviewAnswer(r.Context(), uid, id, req.Answer, req.IsAudio, req.AudioKey)
		if err != nil {
			writeErr(w, err)
			return
		}
		if res.Completed {
			_ = events.Record(r.Context(), uid, activity.TypeSessionFinished, "interview")
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status":  "completed",
				"results": res.Report,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"next_question": res.Next,
			"progress":      res.Progress,
		})
	}
}

// POST /interviews/{sessionID}/finish — abandon early, score what was answered.
func FinishInterviewHandler(svc *session.Service, events *activity.Log) http.HandlerFunc {
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
		_ = events.Record(r.Context(), uid, activity.TypeSessionFinished, "interview")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "completed",
			"results": res.Report,
		})
	}
}

// GET /interviews/{sessionID}
func GetInterviewHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		sess, err := svc.Get(r.Context(), auth.UserIDFromContext(r.Context()), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// MountAudio wires audio answer upload and retrieval.
func MountAudio(r chi.Router, svc *session.Service, bs storage.BlobStore) {
	// POST /interviews/{sessionID}/audio, multipart field "file"
	r.Post("/interviews/{sessionID}/audio", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		// ownership and liveness check before accepting the blob
		sess, err := svc.Get(r.Context(), auth.UserIDFromContext(r.Context()), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if sess.Complete() {
			writeErr(w, session.ErrAlreadyCompleted)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := storage.NewAudioKey(sess.ID)
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"audio_key": key})
	})

	// GET /audio/* — returns the stored recording
	r.Get("/audio/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get("audio/" + key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}

func activeSession(svc *session.Service, mode session.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Active(r.Context(), auth.UserIDFromContext(r.Context()), mode)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func currentQuestion(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		q, prog, err := svc.CurrentQuestion(r.Context(), auth.UserIDFromContext(r.Context()), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"question": q,
			"progress": prog,
		})
	}
}
