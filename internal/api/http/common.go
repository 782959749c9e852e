package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/careermate/careermate/internal/jobs"
	"github.com/careermate/careermate/internal/questionbank"
	"github.com/careermate/careermate/internal/session"
	"github.com/careermate/careermate/internal/users"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors to status codes. Anything unrecognized is a
// persistence or collaborator failure: logged, surfaced as a generic 500.
func writeErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		http.Error(w, "operation failed", code)
		return
	}
	http.Error(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnauthorized),
		errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, questionbank.ErrNotFound),
		errors.Is(err, questionbank.ErrNoQuestions),
		errors.Is(err, jobs.ErrNotFound),
		errors.Is(err, jobs.ErrCareerNotFound),
		errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrEmptyAnswer),
		errors.Is(err, session.ErrWrongQuestion):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrAlreadyCompleted),
		errors.Is(err, session.ErrSessionComplete),
		errors.Is(err, session.ErrActiveSession),
		errors.Is(err, session.ErrConflict),
		errors.Is(err, jobs.ErrAlreadyApplied),
		errors.Is(err, users.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
