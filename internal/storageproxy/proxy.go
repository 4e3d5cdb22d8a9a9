// Package storageproxy fetches stored upload bytes on behalf of the caller
// and relays them without holding the whole object in memory.
package storageproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/metrics"
	"osapio-backend/internal/shared/storage/object"
	"osapio-backend/internal/shared/telemetry"
)

const (
	chunkSize      = 32 << 10
	defaultTimeout = 30 * time.Second
)

var (
	ErrNoPath = apperr.New(apperr.KindValidation, "no_storage_path", "No storage path available for this upload")
	ErrFetch  = apperr.New(apperr.KindUpstream, "storage_fetch_failed", "Failed to fetch file from storage")
	ErrTooBig = apperr.New(apperr.KindUpstream, "storage_object_too_large", "Stored object exceeds the read limit")
)

// Proxy resolves storage paths. http(s) URLs are fetched directly; anything
// else is read through the configured object store.
type Proxy struct {
	Client  *http.Client
	Objects object.Reader
	Metrics *metrics.Registry
}

// New builds a Proxy whose HTTP fetches share one flat timeout.
func New(timeout time.Duration, objects object.Reader, m *metrics.Registry) *Proxy {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Proxy{
		Client:  &http.Client{Timeout: timeout},
		Objects: objects,
		Metrics: m,
	}
}

// Fetch opens the object at path. The caller closes Body.
func (p *Proxy) Fetch(ctx context.Context, path string) (*object.Object, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrNoPath
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return p.fetchURL(ctx, path)
	}
	if p.Objects == nil {
		return nil, apperr.Wrapf(ErrFetch, "no object store configured for %q", path)
	}
	obj, err := p.Objects.Open(ctx, path)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, apperr.Wrapf(ErrFetch, "object not found in storage")
		}
		return nil, apperr.Wrap(ErrFetch, err)
	}
	return obj, nil
}

func (p *Proxy) fetchURL(ctx context.Context, url string) (*object.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(ErrFetch, err)
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(ErrFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		telemetry.Warn("storage.fetch_failed", map[string]any{"status": resp.StatusCode})
		return nil, apperr.Wrapf(ErrFetch, "upstream returned %d", resp.StatusCode)
	}
	return &object.Object{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// Stream copies obj to w in fixed-size chunks, flushing after each one when
// w supports it. It returns the number of bytes written.
func (p *Proxy) Stream(w io.Writer, obj *object.Object) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, chunkSize)
	var total int64
	defer func() { p.Metrics.ProxiedBytes(total) }()
	for {
		n, readErr := obj.Body.Read(buf)
		if n > 0 {
			written, err := w.Write(buf[:n])
			total += int64(written)
			if err != nil {
				return total, err
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}

// ReadAll fetches path and reads at most limit bytes. Larger objects fail
// with ErrTooBig.
func (p *Proxy) ReadAll(ctx context.Context, path string, limit int64) ([]byte, error) {
	obj, err := p.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()
	data, err := io.ReadAll(io.LimitReader(obj.Body, limit+1))
	if err != nil {
		return nil, apperr.Wrap(ErrFetch, err)
	}
	if int64(len(data)) > limit {
		return nil, apperr.Wrapf(ErrTooBig, "more than %s", humanBytes(limit))
	}
	return data, nil
}

func humanBytes(n int64) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%d MiB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
