package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Register creates a user with a bcrypt-hashed password.
func (s *Store) Register(ctx context.Context, name, email, password, role string) (User, error) {
	if role == "" {
		role = "user"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		name, email, string(hash), role, now.Unix()).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return User{ID: id, Name: name, Email: email, Role: role, CreatedAt: now}, nil
}

// Authenticate checks credentials and stamps last activity on success.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at, last_activity FROM users WHERE email=$1`, email)
	u, hash, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_activity=$1 WHERE id=$2`, time.Now().Unix(), u.ID); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) Get(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at, last_activity FROM users WHERE id=$1`, id)
	u, _, err := scanUser(row)
	return u, err
}

// TouchActivity records that the user was just active.
func (s *Store) TouchActivity(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_activity=$1 WHERE id=$2`, time.Now().Unix(), id)
	return err
}

// EnsureAdmin creates the configured admin account when it does not exist.
// Used at startup; a blank password skips the bootstrap.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, email).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = s.Register(ctx, "Administrator", email, password, "admin")
	return err
}

func scanUser(row *sql.Row) (User, string, error) {
	var u User
	var hash string
	var createdAt int64
	var lastActivity sql.NullInt64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role, &createdAt, &lastActivity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, "", ErrNotFound
		}
		return User{}, "", err
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	if lastActivity.Valid {
		t := time.Unix(lastActivity.Int64, 0).UTC()
		u.LastActivity = &t
	}
	return u, hash, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
