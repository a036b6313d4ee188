package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tangent-app/tangent/internal/kyc"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory user store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

// conflict mirrors the unique indexes on email, username and phone_number.
func (r *memoryRepository) conflict(user User) string {
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		switch {
		case user.Email != "" && strings.EqualFold(existing.Email, user.Email):
			return "users_email_key"
		case user.Username != "" && existing.Username == user.Username:
			return "users_username_key"
		case user.PhoneNumber != "" && existing.PhoneNumber == user.PhoneNumber:
			return "users_phone_number_key"
		}
	}
	return ""
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("%w: users_pkey", ErrDuplicate)
	}
	if c := r.conflict(user); c != "" {
		return fmt.Errorf("%w: %s", ErrDuplicate, c)
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.PhoneNumber == phone {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) mutate(id string, fn func(*User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&user); err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *memoryRepository) UpdateDevice(_ context.Context, id, deviceID string) error {
	return r.mutate(id, func(u *User) error {
		u.DeviceID = deviceID
		return nil
	})
}

func (r *memoryRepository) UpdateTokenVersion(_ context.Context, id string, version int) error {
	return r.mutate(id, func(u *User) error {
		u.TokenVersion = version
		return nil
	})
}

func (r *memoryRepository) UpdatePIN(_ context.Context, id string, hash []byte, at time.Time) error {
	return r.mutate(id, func(u *User) error {
		u.PINHash = hash
		u.PINSetAt = &at
		return nil
	})
}

func (r *memoryRepository) UpdatePhone(_ context.Context, id, phone string, verifiedAt time.Time) error {
	return r.mutate(id, func(u *User) error {
		candidate := *u
		candidate.PhoneNumber = phone
		candidate.Email, candidate.Username = "", ""
		if c := r.conflict(candidate); c != "" {
			return fmt.Errorf("%w: %s", ErrDuplicate, c)
		}
		u.PhoneNumber = phone
		u.PhoneVerified = true
		u.PhoneVerifiedAt = &verifiedAt
		return nil
	})
}

func (r *memoryRepository) UpdateAddress(_ context.Context, id string, addr Address) error {
	return r.mutate(id, func(u *User) error {
		u.Address = addr
		return nil
	})
}

func (r *memoryRepository) UpdateNotifications(_ context.Context, id string, push, marketing bool) error {
	return r.mutate(id, func(u *User) error {
		u.NotificationsEnabled = push
		u.MarketingEmailsEnabled = marketing
		return nil
	})
}

func (r *memoryRepository) UpdateKYC(_ context.Context, id string, status kyc.Status, tier string) error {
	return r.mutate(id, func(u *User) error {
		u.KYCStatus = status
		u.Tier = tier
		return nil
	})
}

func (r *memoryRepository) TouchLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *User) error {
		u.LastLoginAt = &at
		return nil
	})
}
