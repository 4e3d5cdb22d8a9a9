package uploads

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"osapio-backend/internal/extract"
	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/telemetry"
	"osapio-backend/internal/shared/util"
)

const (
	MaxFileSize = 10 << 20 // 10MB
	listLimit   = 100
)

// Service owns upload records. All methods are scoped to the caller.
type Service struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

func NewService(repo Repo) *Service {
	return &Service{
		Repo:  repo,
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: uuid.NewString,
	}
}

// Create registers a file that already lives in external storage. The type
// allow-list applies to multipart bytes only; external files of any type can
// be recorded and fall back to a description at analysis time.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Upload, error) {
	name, err := util.SanitizeFileName(in.Filename)
	if err != nil {
		return Upload{}, apperr.Wrap(ErrInvalid, err)
	}
	if in.FileSize <= 0 {
		return Upload{}, apperr.Wrapf(ErrInvalid, "file_size must be positive")
	}
	contentType := strings.TrimSpace(in.ContentType)

	u := s.newRecord(userID, name, in.FileSize)
	u.StoragePath = optional(in.StoragePath)
	u.ContentType = optional(contentType)
	if err := s.Repo.Create(ctx, u); err != nil {
		return Upload{}, err
	}
	telemetry.Info("upload.created", map[string]any{"user_id": userID, "upload_id": u.ID, "file_size": u.FileSize})
	return u, nil
}

// CreateFromFile records a multipart upload. The bytes are not kept; text is
// extracted up front and stored on the record for later analysis.
func (s *Service) CreateFromFile(ctx context.Context, userID string, in FileInput) (Upload, error) {
	name, err := util.SanitizeFileName(in.Filename)
	if err != nil {
		return Upload{}, apperr.Wrap(ErrInvalid, err)
	}
	size := int64(len(in.Data))
	if size == 0 {
		return Upload{}, apperr.Wrapf(ErrInvalid, "file is empty")
	}
	if size > MaxFileSize {
		return Upload{}, ErrTooLarge
	}
	contentType := strings.TrimSpace(in.ContentType)
	if !extract.Allowed(contentType, name) {
		return Upload{}, ErrUnsupported
	}

	u := s.newRecord(userID, name, size)
	u.ContentType = optional(contentType)
	text, err := extract.Text(ctx, in.Data, contentType, name)
	if err != nil {
		telemetry.Warn("upload.extract_failed", map[string]any{"user_id": userID, "upload_id": u.ID, "error": err})
	} else {
		u.ExtractedText = optional(text)
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		return Upload{}, err
	}
	telemetry.Info("upload.created", map[string]any{
		"user_id":   userID,
		"upload_id": u.ID,
		"file_size": u.FileSize,
		"extracted": u.ExtractedText != nil,
	})
	return u, nil
}

// List returns the caller's uploads, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Upload, error) {
	return s.Repo.ListByUser(ctx, userID, listLimit)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Upload, error) {
	if !validID(id) {
		return Upload{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	telemetry.Info("upload.deleted", map[string]any{"user_id": userID, "upload_id": id})
	return nil
}

// SetStatus moves a record to status. Completed records get analyzed_at
// stamped; a nil result keeps the stored one.
func (s *Service) SetStatus(ctx context.Context, userID, id string, status Status, result *string) (Upload, error) {
	if !status.Valid() {
		return Upload{}, ErrBadStatus
	}
	if !validID(id) {
		return Upload{}, ErrNotFound
	}
	upd := StatusUpdate{Status: status, Result: result}
	if status == StatusCompleted {
		now := s.Now()
		upd.AnalyzedAt = &now
	}
	return s.Repo.SetStatus(ctx, userID, id, upd)
}

func (s *Service) newRecord(userID, name string, size int64) Upload {
	return Upload{
		ID:              s.NewID(),
		UserID:          userID,
		Filename:        name,
		FileSize:        size,
		UploadTimestamp: s.Now(),
		AnalysisStatus:  StatusPending,
	}
}

// validID rejects ids the uuid column would refuse to parse.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
