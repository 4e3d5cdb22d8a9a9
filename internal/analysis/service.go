// Package analysis turns an upload into a model-written summary and stores
// the result on the upload record.
package analysis

import (
	"context"
	"strings"
	"time"

	"osapio-backend/internal/extract"
	"osapio-backend/internal/llm"
	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/metrics"
	"osapio-backend/internal/shared/telemetry"
	"osapio-backend/internal/uploads"
)

// maxFetchBytes bounds stored objects read back for analysis.
const maxFetchBytes = 50 << 20

var (
	ErrNoContent = apperr.New(apperr.KindValidation, "no_content", "No content available to analyze; send content or upload the file")
	ErrFailed    = apperr.New(apperr.KindUpstream, "analysis_failed", "Analysis failed")
)

// Fetcher reads stored objects into memory.
type Fetcher interface {
	ReadAll(ctx context.Context, path string, limit int64) ([]byte, error)
}

// Request carries optional inline content and a display name override.
type Request struct {
	Content  *string `json:"content"`
	Filename string  `json:"filename"`
}

type Service struct {
	Uploads *uploads.Service
	LLM     llm.Completer
	Fetcher Fetcher
	Metrics *metrics.Registry
	Now     func() time.Time
}

func NewService(up *uploads.Service, completer llm.Completer, fetcher Fetcher, m *metrics.Registry) *Service {
	if completer == nil {
		completer = llm.Disabled{}
	}
	return &Service{
		Uploads: up,
		LLM:     completer,
		Fetcher: fetcher,
		Metrics: m,
		Now:     time.Now,
	}
}

// Analyze runs the pipeline for one upload owned by userID and returns the
// updated record. Once the record is marked processing, any failure leaves it
// failed.
func (s *Service) Analyze(ctx context.Context, userID, id string, req Request) (uploads.Upload, error) {
	u, err := s.Uploads.Get(ctx, userID, id)
	if err != nil {
		return uploads.Upload{}, err
	}
	name := strings.TrimSpace(req.Filename)
	if name == "" {
		name = u.Filename
	}
	_, disabled := s.LLM.(llm.Disabled)
	if !disabled && !hasSource(u, req) {
		return uploads.Upload{}, ErrNoContent
	}

	start := s.Now()
	s.Metrics.AnalysisStarted()
	proc, err := s.Uploads.SetStatus(ctx, userID, id, uploads.StatusProcessing, nil)
	if err != nil {
		return uploads.Upload{}, err
	}
	s.logTransition(u, uploads.StatusProcessing)
	u = proc

	var (
		result string
		kind   Kind
	)
	if disabled {
		kind = Classify(name, inline(req))
		result = placeholder(name, u.FileSize)
	} else {
		var content string
		content, kind = s.resolveContent(ctx, u, name, req)
		out, err := s.LLM.Complete(ctx, BuildMessages(kind, name, content))
		if err != nil {
			s.fail(ctx, userID, u, kind, start, err)
			return uploads.Upload{}, apperr.Wrap(ErrFailed, err)
		}
		result = out.Content
	}

	done, err := s.Uploads.SetStatus(ctx, userID, id, uploads.StatusCompleted, &result)
	if err != nil {
		s.fail(ctx, userID, u, kind, start, err)
		return uploads.Upload{}, apperr.Wrap(ErrFailed, err)
	}
	s.Metrics.AnalysisCompleted(string(kind), s.Now().Sub(start))
	s.logTransition(u, uploads.StatusCompleted)
	return done, nil
}

// resolveContent picks what the model reads. Spreadsheets with a storage
// path are always read from storage. Everything else prefers inline content,
// then text extracted at upload time, then the stored object. A stored object
// that cannot be parsed is replaced by a short explanation so the model still
// gets called.
func (s *Service) resolveContent(ctx context.Context, u uploads.Upload, name string, req Request) (string, Kind) {
	kind := Classify(name, "")
	if kind.Tabular() && hasStoragePath(u) {
		return s.storedContent(ctx, u, name, kind)
	}
	if c := inline(req); c != "" {
		return c, Classify(name, c)
	}
	if u.ExtractedText != nil && *u.ExtractedText != "" {
		return *u.ExtractedText, Classify(name, *u.ExtractedText)
	}
	if !hasStoragePath(u) {
		return parseFailure(kind, name, ErrNoContent), kind
	}
	return s.storedContent(ctx, u, name, kind)
}

func (s *Service) storedContent(ctx context.Context, u uploads.Upload, name string, kind Kind) (string, Kind) {
	var contentType string
	if u.ContentType != nil {
		contentType = *u.ContentType
	}
	text, err := s.fetchText(ctx, *u.StoragePath, contentType, name)
	if err != nil {
		telemetry.Warn("analysis.parse_failed", map[string]any{"upload_id": u.ID, "kind": string(kind), "error": err})
		return parseFailure(kind, name, err), kind
	}
	if !kind.Tabular() {
		kind = Classify(name, text)
	}
	return text, kind
}

func (s *Service) fetchText(ctx context.Context, path, contentType, name string) (string, error) {
	if s.Fetcher == nil {
		return "", ErrNoContent
	}
	data, err := s.Fetcher.ReadAll(ctx, path, maxFetchBytes)
	if err != nil {
		return "", err
	}
	return extract.Text(ctx, data, contentType, name)
}

// fail marks the record failed outside the request's cancellation and only
// logs a write error.
func (s *Service) fail(ctx context.Context, userID string, u uploads.Upload, kind Kind, start time.Time, cause error) {
	s.Metrics.AnalysisFailed(string(kind), s.Now().Sub(start))
	telemetry.Error("analysis.failed", map[string]any{"user_id": userID, "upload_id": u.ID, "kind": string(kind), "error": cause})

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.Uploads.SetStatus(ctx, userID, u.ID, uploads.StatusFailed, nil); err != nil {
		telemetry.Warn("analysis.mark_failed_error", map[string]any{"upload_id": u.ID, "error": err})
		return
	}
	s.logTransition(u, uploads.StatusFailed)
}

func (s *Service) logTransition(u uploads.Upload, to uploads.Status) {
	telemetry.Info("analysis.status", map[string]any{"upload_id": u.ID, "from": string(u.AnalysisStatus), "to": string(to)})
}

func inline(req Request) string {
	if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
		return ""
	}
	return *req.Content
}

func hasSource(u uploads.Upload, req Request) bool {
	switch {
	case inline(req) != "":
		return true
	case u.ExtractedText != nil && *u.ExtractedText != "":
		return true
	case hasStoragePath(u):
		return true
	}
	return false
}

func hasStoragePath(u uploads.Upload) bool {
	return u.StoragePath != nil && strings.TrimSpace(*u.StoragePath) != ""
}
