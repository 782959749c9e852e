package http

import (
	"net/http"
	"strings"

	"github.com/careermate/careermate/internal/questionbank"
)

// POST /questions (admin)  adds one question to the bank.
func CreateQuestionHandler(bank questionbank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CareerID    int64  `json:"career_id"`
			Question    string `json:"question"`
			Type        string `json:"question_type"`
			Difficulty  string `json:"difficulty_level"`
			IdealAnswer string `json:"ideal_answer"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.CareerID == 0 || strings.TrimSpace(req.Question) == "" {
			http.Error(w, "career_id and question required", http.StatusBadRequest)
			return
		}
		if req.Difficulty == "" {
			req.Difficulty = questionbank.DifficultyBeginner
		}
		if req.Type == "" {
			req.Type = "behavioral"
		}
		id, err := bank.Put(r.Context(), questionbank.Question{
			CareerID:    req.CareerID,
			Text:        req.Question,
			Type:        req.Type,
			Difficulty:  req.Difficulty,
			IdealAnswer: req.IdealAnswer,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"id": id})
	}
}
