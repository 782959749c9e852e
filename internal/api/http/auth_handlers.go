package http

import (
	"net/http"
	"strings"

	"github.com/careermate/careermate/internal/activity"
	auth "github.com/careermate/careermate/internal/auth/middleware"
	"github.com/careermate/careermate/internal/users"
)

// POST /auth/signup  { "name": "...", "email": "...", "password": "..." }
func SignupHandler(store *users.Store, authSvc *auth.Service, events *activity.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Password = strings.TrimSpace(req.Password)
		if req.Name == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "all fields are required", http.StatusBadRequest)
			return
		}
		if len(req.Password) < 8 {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		u, err := store.Register(r.Context(), req.Name, req.Email, req.Password, "user")
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = events.Record(r.Context(), u.ID, activity.TypeSignup, "")
		writeJSONToken(w, authSvc, u)
	}
}

// POST /auth/login  { "email": "...", "password": "..." }
func LoginHandler(store *users.Store, authSvc *auth.Service, events *activity.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}
		u, err := store.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = events.Record(r.Context(), u.ID, activity.TypeLogin, "")
		writeJSONToken(w, authSvc, u)
	}
}

func writeJSONToken(w http.ResponseWriter, authSvc *auth.Service, u users.User) {
	tok, err := authSvc.Issue(u.ID, u.Role)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": tok,
		"user":         u,
	})
}
