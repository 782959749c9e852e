// Package seed loads the initial careers, questions, and job listings from a
// YAML file into an empty database.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Question struct {
	Text        string `yaml:"text"`
	Type        string `yaml:"type"`
	Difficulty  string `yaml:"difficulty"`
	IdealAnswer string `yaml:"ideal_answer"`
}

type Job struct {
	Title        string `yaml:"title"`
	Company      string `yaml:"company"`
	Location     string `yaml:"location"`
	Description  string `yaml:"description"`
	Requirements string `yaml:"requirements"`
}

type Career struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Questions   []Question `yaml:"questions"`
	Jobs        []Job      `yaml:"jobs"`
}

type File struct {
	Careers []Career `yaml:"careers"`
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse seed: %w", err)
	}
	for i, c := range f.Careers {
		if c.Name == "" {
			return File{}, fmt.Errorf("career %d: name is required", i)
		}
		for j, q := range c.Questions {
			if q.Text == "" {
				return File{}, fmt.Errorf("career %q question %d: text is required", c.Name, j)
			}
			if q.Difficulty == "" {
				f.Careers[i].Questions[j].Difficulty = "beginner"
			}
			if q.Type == "" {
				f.Careers[i].Questions[j].Type = "behavioral"
			}
		}
	}
	return f, nil
}

// Apply inserts the seed content. It is a no-op when careers already exist,
// so restarts never duplicate data.
func Apply(ctx context.Context, db *sql.DB, f File) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM careers`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	for _, c := range f.Careers {
		var careerID int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO careers (name, description) VALUES ($1,$2) RETURNING id`,
			c.Name, c.Description).Scan(&careerID); err != nil {
			return err
		}
		for _, q := range c.Questions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO questions (career_id, question, question_type, difficulty_level, ideal_answer)
				 VALUES ($1,$2,$3,$4,$5)`,
				careerID, q.Text, q.Type, q.Difficulty, q.IdealAnswer); err != nil {
				return err
			}
		}
		for _, j := range c.Jobs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO jobs (title, company, location, description, requirements, career_id, posted_at)
				 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				j.Title, j.Company, j.Location, j.Description, j.Requirements, careerID, now); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
