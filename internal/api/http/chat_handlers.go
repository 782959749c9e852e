package http

import (
	"context"
	"net/http"
	"strings"
)

// Chatter answers a single free-form career question. Nil when the assistant
// is not configured.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// POST /chat  { "message": "..." }
func ChatHandler(assistant Chatter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if assistant == nil {
			http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
			return
		}
		var req struct {
			Message string `json:"message"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		msg := strings.TrimSpace(req.Message)
		if msg == "" {
			http.Error(w, "please enter a valid message", http.StatusBadRequest)
			return
		}
		content, err := assistant.Chat(r.Context(), msg)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"content": content})
	}
}
