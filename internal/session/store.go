package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ListOpts filters session history queries.
type ListOpts struct {
	UserID int64
	Mode   Mode
	Status Status
	Limit  int
	Offset int
}

type Store interface {
	// Create inserts the session and its question sequence, assigning the id.
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id int64) (Session, error)
	// ActiveFor returns the in-progress session for a (user, mode) slot, or
	// ErrNotFound when the slot is free.
	ActiveFor(ctx context.Context, userID int64, mode Mode) (Session, error)
	// AppendAnswer records the answer and advances position to newPosition as
	// a single unit. Fails with ErrConflict when the stored position is not
	// newPosition-1, and ErrAlreadyCompleted on a finished session.
	AppendAnswer(ctx context.Context, a Answer, newPosition int) error
	Answers(ctx context.Context, sessionID int64) ([]Answer, error)
	// Complete marks the terminal transition. Fails with ErrAlreadyCompleted
	// when the session is not in progress.
	Complete(ctx context.Context, id int64, endedAt time.Time, score float64, reportJSON []byte) error
	List(ctx context.Context, opts ListOpts) ([]Session, error)
}

type memoryStore struct {
	mu          sync.RWMutex
	sessions    map[int64]Session
	answers     map[int64][]Answer
	reports     map[int64][]byte
	nextSession int64
	nextAnswer  int64
}

// NewInMemoryStore is used by tests and offline tooling; the server runs on
// the SQL store.
func NewInMemoryStore() Store {
	return &memoryStore{
		sessions: map[int64]Session{},
		answers:  map[int64][]Answer{},
		reports:  map[int64][]byte{},
	}
}

func (m *memoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSession++
	s.ID = m.nextSession
	m.sessions[s.ID] = cloneSession(*s)
	return nil
}

func (m *memoryStore) Get(_ context.Context, id int64) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(s), nil
}

func (m *memoryStore) ActiveFor(_ context.Context, userID int64, mode Mode) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.Mode == mode && s.Status == StatusInProgress {
			return cloneSession(s), nil
		}
	}
	return Session{}, ErrNotFound
}

func (m *memoryStore) AppendAnswer(_ context.Context, a Answer, newPosition int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[a.SessionID]
	if !ok {
		return ErrNotFound
	}
	if s.Status != StatusInProgress {
		return ErrAlreadyCompleted
	}
	if s.Position != newPosition-1 {
		return ErrConflict
	}
	m.nextAnswer++
	a.ID = m.nextAnswer
	m.answers[a.SessionID] = append(m.answers[a.SessionID], a)
	s.Position = newPosition
	m.sessions[s.ID] = s
	return nil
}

func (m *memoryStore) Answers(_ context.Context, sessionID int64) ([]Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Answer, len(m.answers[sessionID]))
	copy(out, m.answers[sessionID])
	return out, nil
}

func (m *memoryStore) Complete(_ context.Context, id int64, endedAt time.Time, score float64, reportJSON []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status != StatusInProgress {
		return ErrAlreadyCompleted
	}
	s.Status = StatusCompleted
	s.EndedAt = &endedAt
	s.Score = &score
	m.sessions[id] = s
	m.reports[id] = reportJSON
	return nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Session
	for _, s := range m.sessions {
		if opts.UserID != 0 && s.UserID != opts.UserID {
			continue
		}
		if opts.Mode != "" && s.Mode != opts.Mode {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func cloneSession(s Session) Session {
	ids := make([]int64, len(s.QuestionIDs))
	copy(ids, s.QuestionIDs)
	s.QuestionIDs = ids
	return s
}
