package questionbank

import (
	"context"
	"errors"
	"math/rand"
	"sync"
)

var (
	// ErrNoQuestions means zero questions match a career/difficulty filter.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNotFound means a referenced question id does not exist.
	ErrNotFound = errors.New("question not found")
)

type Store interface {
	// Put inserts a question and returns its id.
	Put(ctx context.Context, q Question) (int64, error)
	// Get returns a single question. The ideal answer is stripped.
	Get(ctx context.Context, id int64) (Question, error)
	// QuestionsFor returns up to count duplicate-free questions matching the
	// filter, uniformly sampled with no ordering guarantee. Ideal answers are
	// stripped. Fails with ErrNoQuestions when nothing matches.
	QuestionsFor(ctx context.Context, careerID int64, difficulty string, count int) ([]Question, error)
}

type memoryStore struct {
	mu        sync.RWMutex
	questions map[int64]Question
	nextID    int64
}

func NewInMemoryStore() Store {
	return &memoryStore{questions: map[int64]Question{}}
}

func (m *memoryStore) Put(_ context.Context, q Question) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	m.questions[q.ID] = q
	return q.ID, nil
}

func (m *memoryStore) Get(_ context.Context, id int64) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	q.IdealAnswer = ""
	return q, nil
}

func (m *memoryStore) QuestionsFor(_ context.Context, careerID int64, difficulty string, count int) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pool []Question
	for _, q := range m.questions {
		if q.CareerID == careerID && q.Difficulty == difficulty {
			q.IdealAnswer = ""
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}
