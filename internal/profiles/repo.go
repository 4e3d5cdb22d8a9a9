package profiles

import (
	"context"
	"time"
)

// Repo persists profiles keyed by subject id.
type Repo interface {
	Insert(ctx context.Context, p Profile) error
	TouchLogin(ctx context.Context, uid string, at time.Time) (Profile, error)
	Update(ctx context.Context, uid string, upd ProfileUpdate, at time.Time) (Profile, error)
}
