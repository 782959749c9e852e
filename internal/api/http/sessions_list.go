package http

import (
	"net/http"
	"strings"

	"github.com/careermate/careermate/internal/session"

	auth "github.com/careermate/careermate/internal/auth/middleware"
)

// GET /sessions?mode=interview&status=completed&user_id=...&limit=50&offset=0
//
// Non-admin callers can only see their own history: user_id is forced to the
// authenticated subject.
func ListSessionsHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid := auth.UserIDFromContext(ctx)
		role := auth.RoleFromContext(ctx)

		userID := uid
		if role == "admin" {
			if v := strings.TrimSpace(r.URL.Query().Get("user_id")); v != "" {
				id, err := parseID(v)
				if err != nil {
					http.Error(w, "bad user_id", http.StatusBadRequest)
					return
				}
				userID = id
			}
		}

		list, err := svc.List(ctx, session.ListOpts{
			UserID: userID,
			Mode:   session.Mode(strings.TrimSpace(r.URL.Query().Get("mode"))),
			Status: session.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
