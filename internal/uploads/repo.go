package uploads

import "context"

// Repo persists upload records. Every lookup is scoped to the owner; a
// record owned by someone else is reported as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, u Upload) error
	Get(ctx context.Context, userID, id string) (Upload, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Upload, error)
	Delete(ctx context.Context, userID, id string) error
	SetStatus(ctx context.Context, userID, id string, upd StatusUpdate) (Upload, error)
}
