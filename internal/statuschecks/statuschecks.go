// Package statuschecks keeps the legacy unauthenticated status check log.
package statuschecks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/storage/db"
)

const listLimit = 1000

var ErrInvalid = apperr.New(apperr.KindValidation, "validation_error", "client_name is required")

type StatusCheck struct {
	ID         string    `db:"id" bson:"id" json:"id"`
	ClientName string    `db:"client_name" bson:"client_name" json:"client_name"`
	Timestamp  time.Time `db:"timestamp" bson:"timestamp" json:"timestamp"`
}

type Repo interface {
	Create(ctx context.Context, sc StatusCheck) error
	List(ctx context.Context, limit int) ([]StatusCheck, error)
}

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Create(ctx context.Context, clientName string) (StatusCheck, error) {
	name := strings.TrimSpace(clientName)
	if name == "" {
		return StatusCheck{}, ErrInvalid
	}
	sc := StatusCheck{ID: uuid.NewString(), ClientName: name, Timestamp: s.Now()}
	if err := s.Repo.Create(ctx, sc); err != nil {
		return StatusCheck{}, err
	}
	return sc, nil
}

func (s *Service) List(ctx context.Context) ([]StatusCheck, error) {
	return s.Repo.List(ctx, listLimit)
}

// MemoryRepo keeps checks in insertion order.
type MemoryRepo struct {
	mu    sync.RWMutex
	items []StatusCheck
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(ctx context.Context, sc StatusCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, sc)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, limit int) ([]StatusCheck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]StatusCheck, len(r.items))
	copy(out, r.items)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PGRepo stores checks in the status_checks table.
type PGRepo struct {
	DB *sqlx.DB
}

func NewPGRepo(conn *sqlx.DB) *PGRepo {
	return &PGRepo{DB: conn}
}

func (r *PGRepo) Create(ctx context.Context, sc StatusCheck) error {
	const query = `INSERT INTO status_checks (id, client_name, timestamp) VALUES (:id, :client_name, :timestamp)`
	if _, err := r.DB.NamedExecContext(ctx, query, sc); err != nil {
		return db.Classify("create status check", err)
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit int) ([]StatusCheck, error) {
	const query = `SELECT id, client_name, timestamp FROM status_checks ORDER BY timestamp ASC LIMIT $1`
	out := make([]StatusCheck, 0)
	if err := r.DB.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, db.Classify("list status checks", err)
	}
	return out, nil
}
