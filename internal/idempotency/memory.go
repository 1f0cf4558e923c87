package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	status    string
	resp      Response
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Reserve(ctx context.Context, key string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
		if e.status == statusSuccess {
			resp := e.resp
			return &resp, nil
		}
		return nil, ErrInProgress
	}
	m.entries[key] = memoryEntry{status: statusProcessing, expiresAt: now.Add(m.ttl)}
	return nil, nil
}

func (m *MemoryStore) Complete(ctx context.Context, key string, resp Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{status: statusSuccess, resp: resp, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
