package profiles

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]Profile)}
}

func (r *MemoryRepo) Insert(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UID]; ok {
		return ErrExists
	}
	r.profiles[p.UID] = p
	return nil
}

func (r *MemoryRepo) TouchLogin(ctx context.Context, uid string, at time.Time) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p.LastLogin = at
	r.profiles[uid] = p
	return p, nil
}

func (r *MemoryRepo) Update(ctx context.Context, uid string, upd ProfileUpdate, at time.Time) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if upd.DisplayName != nil {
		p.DisplayName = *upd.DisplayName
	}
	p.UpdatedAt = &at
	r.profiles[uid] = p
	return p, nil
}

var _ Repo = (*MemoryRepo)(nil)
