package questionbank

// Question is one entry in the shared question pool. Entries are immutable
// once created and referenced by sessions through their id only.
type Question struct {
	ID          int64  `json:"id"`
	CareerID    int64  `json:"career_id"`
	Text        string `json:"question"`
	Type        string `json:"question_type"` // behavioral|technical|problem-solving
	Difficulty  string `json:"difficulty_level"`
	IdealAnswer string `json:"-"` // never served to candidates
}

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)
