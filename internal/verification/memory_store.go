package verification

import (
	"context"
	"sync"
	"time"
)

type issueWindow struct {
	count int64
	reset time.Time
}

type memoryStore struct {
	mu     sync.RWMutex
	codes  map[string]Code
	issued map[string]issueWindow
}

// NewMemoryStore builds an in-process code store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{codes: make(map[string]Code), issued: make(map[string]issueWindow)}
}

func key(channel, destination string) string {
	return channel + ":" + destination
}

func (s *memoryStore) Save(_ context.Context, code Code, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key(code.Channel, code.Destination)] = code
	return nil
}

func (s *memoryStore) Get(_ context.Context, channel, destination string) (Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.codes[key(channel, destination)]
	if !ok {
		return Code{}, ErrNotFound
	}
	return code, nil
}

func (s *memoryStore) Delete(_ context.Context, channel, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, key(channel, destination))
	return nil
}

func (s *memoryStore) CountIssue(_ context.Context, channel, destination string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(channel, destination)
	now := time.Now()
	w := s.issued[k]
	if now.After(w.reset) {
		w = issueWindow{reset: now.Add(window)}
	}
	w.count++
	s.issued[k] = w
	return w.count, nil
}
