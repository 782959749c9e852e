package http

import (
	"net/http"

	"github.com/careermate/careermate/internal/activity"
	auth "github.com/careermate/careermate/internal/auth/middleware"
	"github.com/careermate/careermate/internal/users"
)

// GET /profile — the caller's account plus recent activity.
func ProfileHandler(store *users.Store, events *activity.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.UserIDFromContext(r.Context())
		u, err := store.Get(r.Context(), uid)
		if err != nil {
			writeErr(w, err)
			return
		}
		recent, err := events.Recent(r.Context(), uid, 20)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":     u,
			"activity": recent,
		})
	}
}
