package wallet

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet
}

// NewMemoryRepository constructs an in-memory repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, wallet Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if existing.ID == wallet.ID {
			return ErrDuplicate
		}
		if existing.IsActive && existing.UserID == wallet.UserID && strings.EqualFold(existing.Address, wallet.Address) {
			return ErrDuplicate
		}
	}
	r.storage[wallet.ID] = wallet
	return nil
}

func (r *memoryRepository) Get(_ context.Context, userID, id string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.storage[id]
	if !ok || wallet.UserID != userID || !wallet.IsActive {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Wallet
	for _, w := range r.storage {
		if w.UserID == userID && w.IsActive {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ConnectedAt.After(out[j].ConnectedAt)
	})
	return out, nil
}

func (r *memoryRepository) Deactivate(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.storage[id]
	if !ok || w.UserID != userID || !w.IsActive {
		return ErrNotFound
	}
	w.IsActive = false
	w.IsDefault = false
	r.storage[id] = w
	return nil
}

func (r *memoryRepository) SetDefault(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.storage[id]
	if !ok || target.UserID != userID || !target.IsActive {
		return ErrNotFound
	}
	for wid, w := range r.storage {
		if w.UserID == userID && w.IsDefault {
			w.IsDefault = false
			r.storage[wid] = w
		}
	}
	target.IsDefault = true
	r.storage[id] = target
	return nil
}
