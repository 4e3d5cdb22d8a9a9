package uploads

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for local runs and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Upload // id -> upload
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Upload)}
}

func (r *MemoryRepo) Create(ctx context.Context, u Upload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[u.ID] = u
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[id]
	if !ok || u.UserID != userID {
		return Upload{}, ErrNotFound
	}
	return u, nil
}

// ListByUser returns newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Upload, 0)
	for _, u := range r.data {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadTimestamp.After(out[j].UploadTimestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok || u.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) SetStatus(ctx context.Context, userID, id string, upd StatusUpdate) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok || u.UserID != userID {
		return Upload{}, ErrNotFound
	}
	u.AnalysisStatus = upd.Status
	if upd.Result != nil {
		res := *upd.Result
		u.AnalysisResult = &res
	}
	if upd.AnalyzedAt != nil {
		at := *upd.AnalyzedAt
		u.AnalyzedAt = &at
	}
	r.data[id] = u
	return u, nil
}
