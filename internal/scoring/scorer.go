// Package scoring turns a completed session's answers into a score report.
//
// The interview heuristic is a deterministic function of surface text
// features (length, keyword presence, answer structure). It is intentionally
// simple; richer feedback generation is a pluggable collaborator, not part of
// the scorer.
package scoring

import (
	"strings"
	"unicode/utf8"
)

// Report is the aggregate outcome of a completed session. It is recomputed
// wholesale on finish, never partially updated.
type Report struct {
	OverallScore       int    `json:"score"`
	TechnicalScore     int    `json:"technical_score"`
	CommunicationScore int    `json:"communication_score"`
	ConfidenceScore    int    `json:"confidence_score"`
	Feedback           string `json:"feedback"`
	Strengths          string `json:"strengths"`
	AreasToImprove     string `json:"areas_to_improve"`
}

// Templates are the fixed feedback strings attached to a report. They do not
// vary with answer content.
type Templates struct {
	Feedback       string
	Strengths      string
	AreasToImprove string

	// Used when the candidate answered nothing.
	NoAnswersFeedback       string
	NoAnswersStrengths      string
	NoAnswersAreasToImprove string
}

func DefaultTemplates() Templates {
	return Templates{
		Feedback:       "You demonstrated good knowledge but could improve your answer structure.",
		Strengths:      "Technical understanding, clear communication",
		AreasToImprove: "Answer structure, providing more specific examples",

		NoAnswersFeedback:       "You didn't answer any questions. Please try again.",
		NoAnswersStrengths:      "None",
		NoAnswersAreasToImprove: "Answer all questions",
	}
}

// Scorer maps an ordered list of answer texts to a report.
type Scorer interface {
	Score(texts []string) Report
}

type Option func(*heuristicScorer)

func WithKeywords(kws []string) Option {
	return func(s *heuristicScorer) { s.keywords = kws }
}

func WithTemplates(t Templates) Option {
	return func(s *heuristicScorer) { s.templates = t }
}

type heuristicScorer struct {
	keywords  []string
	templates Templates
}

// NewHeuristicScorer builds the default interview scorer.
func NewHeuristicScorer(opts ...Option) Scorer {
	s := &heuristicScorer{
		keywords:  []string{"experience", "project", "learn"},
		templates: DefaultTemplates(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *heuristicScorer) Score(texts []string) Report {
	var answered []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			answered = append(answered, t)
		}
	}
	if len(answered) == 0 {
		return Report{
			Feedback:       s.templates.NoAnswersFeedback,
			Strengths:      s.templates.NoAnswersStrengths,
			AreasToImprove: s.templates.NoAnswersAreasToImprove,
		}
	}

	var total, tech, comm float64
	for _, text := range answered {
		length := float64(utf8.RuneCountInString(text)) / 20
		if length > 1 {
			length = 1
		}
		length *= 20

		keyword := 5.0
		low := strings.ToLower(text)
		for _, kw := range s.keywords {
			if strings.Contains(low, kw) {
				keyword = 10
				break
			}
		}

		total += length + keyword
		tech += length * 1.2

		// structure markers are matched case-sensitively
		bonus := 0.0
		if strings.Contains(text, "first") && strings.Contains(text, "then") {
			bonus = 5
		}
		comm += length*0.8 + bonus
	}

	n := float64(len(answered))
	overall := capScore(int(total / n))
	r := Report{
		OverallScore:       overall,
		TechnicalScore:     capScore(int(tech / n)),
		CommunicationScore: capScore(int(comm / n)),
		ConfidenceScore:    capScore(overall + 10),
		Feedback:           s.templates.Feedback,
		Strengths:          s.templates.Strengths,
		AreasToImprove:     s.templates.AreasToImprove,
	}
	return r
}

func capScore(v int) int {
	if v > 100 {
		return 100
	}
	return v
}

// TestScore is the test-mode aggregate: one point per answer the client
// marked correct. Correctness is client-supplied and not re-validated against
// the ideal answer; that trust boundary is inherited from the original flow.
func TestScore(correct []bool) int {
	n := 0
	for _, c := range correct {
		if c {
			n++
		}
	}
	return n
}
