package jobs

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("job not found")
	ErrCareerNotFound = errors.New("career not found")
	ErrAlreadyApplied = errors.New("already applied")
)

type Career struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Job struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	CareerID     *int64    `json:"career_id,omitempty"`
	CareerName   string    `json:"career_name,omitempty"`
	PostedAt     time.Time `json:"posted_at"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) ListCareers(ctx context.Context) ([]Career, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM careers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Career{}
	for rows.Next() {
		var c Career
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCareer(ctx context.Context, c Career) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO careers (name, description) VALUES ($1,$2) RETURNING id`,
		c.Name, c.Description).Scan(&id)
	return id, err
}

func (s *Store) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT j.id, j.title, j.company, j.location, j.description, j.requirements, j.career_id, c.name, j.posted_at
		 FROM jobs j LEFT JOIN careers c ON j.career_id = c.id
		 ORDER BY j.posted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Store) GetJob(ctx context.Context, id int64) (Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT j.id, j.title, j.company, j.location, j.description, j.requirements, j.career_id, c.name, j.posted_at
		 FROM jobs j LEFT JOIN careers c ON j.career_id = c.id
		 WHERE j.id=$1`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func (s *Store) CreateJob(ctx context.Context, j Job) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO jobs (title, company, location, description, requirements, career_id, posted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		j.Title, j.Company, j.Location, j.Description, j.Requirements, j.CareerID, time.Now().Unix()).Scan(&id)
	return id, err
}

// Apply records a user's application for a job.
func (s *Store) Apply(ctx context.Context, jobID, userID int64) error {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE id=$1`, jobID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (job_id, user_id, applied_at) VALUES ($1,$2,$3)`,
		jobID, userID, time.Now().Unix())
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyApplied
	}
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var careerID sql.NullInt64
	var careerName sql.NullString
	var postedAt int64
	if err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description,
		&j.Requirements, &careerID, &careerName, &postedAt); err != nil {
		return Job{}, err
	}
	if careerID.Valid {
		v := careerID.Int64
		j.CareerID = &v
	}
	j.CareerName = careerName.String
	j.PostedAt = time.Unix(postedAt, 0).UTC()
	return j, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
