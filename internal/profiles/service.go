package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"osapio-backend/internal/identity"
	"osapio-backend/internal/shared/telemetry"
)

const maxDisplayNameLen = 120

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

// GetOrCreate returns the caller's profile, creating it from the verified
// claims on first sight. Later calls only refresh last_login; stored contact
// fields win over newer claims.
func (s *Service) GetOrCreate(ctx context.Context, claims identity.Claims) (Profile, error) {
	if strings.TrimSpace(claims.UID) == "" {
		return Profile{}, ErrInvalid
	}
	now := s.Now()

	p, err := s.Repo.TouchLogin(ctx, claims.UID, now)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}

	p = Profile{
		UID:           claims.UID,
		Email:         claims.Email,
		PhoneNumber:   claims.PhoneNumber,
		EmailVerified: claims.EmailVerified,
		ProviderID:    claims.ProviderID,
		CreatedAt:     now,
		LastLogin:     now,
	}
	switch err := s.Repo.Insert(ctx, p); {
	case err == nil:
		telemetry.Info("profile.created", map[string]any{"user_id": claims.UID, "provider_id": claims.ProviderID})
		return p, nil
	case errors.Is(err, ErrExists):
		// lost a race with a concurrent first request
		return s.Repo.TouchLogin(ctx, claims.UID, now)
	default:
		return Profile{}, err
	}
}

// Update applies the allow-listed fields and stamps updated_at.
func (s *Service) Update(ctx context.Context, uid string, upd ProfileUpdate) (Profile, error) {
	if strings.TrimSpace(uid) == "" {
		return Profile{}, ErrInvalid
	}
	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if len([]rune(name)) > maxDisplayNameLen {
			return Profile{}, ErrInvalid
		}
		upd.DisplayName = &name
	}
	return s.Repo.Update(ctx, uid, upd, s.Now())
}
