package session

import (
	"context"
	"maps"
	"sync"

	"auth-graphql/models"
)

// MemoryRepository is an in-process Repository test double. The session, auth and
// server tests share it, which is why it is not in a _test.go file; nothing in the
// running server constructs one.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.Session)}
}

func (r *MemoryRepository) Find(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	record.Values = maps.Clone(record.Values)
	return &record, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, record *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *record
	stored.Values = maps.Clone(record.Values)
	if existing, ok := r.records[record.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	r.records[record.ID] = stored
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}

func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
