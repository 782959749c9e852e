package questionbank

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, q Question) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO questions (career_id, question, question_type, difficulty_level, ideal_answer)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		q.CareerID, q.Text, q.Type, q.Difficulty, q.IdealAnswer).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, career_id, question, question_type, difficulty_level FROM questions WHERE id=$1`, id)
	var q Question
	if err := row.Scan(&q.ID, &q.CareerID, &q.Text, &q.Type, &q.Difficulty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	return q, nil
}

// QuestionsFor samples without replacement in the database. ORDER BY RANDOM()
// works on both sqlite and postgres.
func (s *SQLStore) QuestionsFor(ctx context.Context, careerID int64, difficulty string, count int) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, career_id, question, question_type, difficulty_level
		 FROM questions
		 WHERE career_id=$1 AND difficulty_level=$2
		 ORDER BY RANDOM() LIMIT $3`,
		careerID, difficulty, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.CareerID, &q.Text, &q.Type, &q.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoQuestions
	}
	return out, nil
}
