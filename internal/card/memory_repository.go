package card

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	cards map[string]Card
}

// NewMemoryRepository builds an in-memory card store.
func NewMemoryRepository() Repository {
	return &memoryRepository{cards: make(map[string]Card)}
}

func (r *memoryRepository) Create(_ context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[c.ID] = c
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Card
	for _, c := range r.cards {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) SetDefault(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.cards[id]
	if !ok || target.UserID != userID || !target.IsActive {
		return ErrNotFound
	}
	for cid, c := range r.cards {
		if c.UserID == userID && c.IsDefault {
			c.IsDefault = false
			r.cards[cid] = c
		}
	}
	target.IsDefault = true
	r.cards[id] = target
	return nil
}
