package storageproxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/metrics"
	"osapio-backend/internal/shared/storage/object"
	"osapio-backend/internal/shared/storage/object/local"
)

func TestFetchURLReturnsUpstreamMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "a,b\n1,2\n")
	}))
	defer srv.Close()

	p := New(time.Second, nil, nil)
	obj, err := p.Fetch(context.Background(), srv.URL+"/orders.csv")
	require.NoError(t, err)
	defer obj.Body.Close()

	assert.Equal(t, "text/csv", obj.ContentType)
	assert.EqualValues(t, 8, obj.ContentLength)
	body, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "a,b\n1,2\n", string(body))
}

func TestFetchUpstreamErrorIsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired signature", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(time.Second, nil, nil).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "403")
}

func TestFetchNetworkFailureIsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(time.Second, nil, nil).Fetch(context.Background(), url)
	require.ErrorIs(t, err, ErrFetch)
}

func TestFetchTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(50*time.Millisecond, nil, nil).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrFetch)
}

func TestFetchEmptyPathIsValidation(t *testing.T) {
	_, err := New(0, nil, nil).Fetch(context.Background(), "  ")
	require.ErrorIs(t, err, ErrNoPath)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestFetchKeyUsesObjectStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "u1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u1", "idoc.xml"), []byte("<IDOC/>"), 0o644))

	p := New(0, local.New(dir), nil)
	obj, err := p.Fetch(context.Background(), "u1/idoc.xml")
	require.NoError(t, err)
	defer obj.Body.Close()
	body, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "<IDOC/>", string(body))

	_, err = p.Fetch(context.Background(), "u1/missing.xml")
	require.ErrorIs(t, err, ErrFetch)
}

func TestFetchKeyWithoutObjectStore(t *testing.T) {
	_, err := New(0, nil, nil).Fetch(context.Background(), "u1/file.pdf")
	require.ErrorIs(t, err, ErrFetch)
}

// chunkRecorder records the size of every write and counts flushes.
type chunkRecorder struct {
	bytes.Buffer
	writes  []int
	flushes int
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.writes = append(c.writes, len(p))
	return c.Buffer.Write(p)
}

func (c *chunkRecorder) Flush() { c.flushes++ }

func TestStreamWritesBoundedChunks(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 3*chunkSize+100)
	reg := metrics.New()
	p := New(0, nil, reg)

	w := &chunkRecorder{}
	n, err := p.Stream(w, &object.Object{Body: io.NopCloser(bytes.NewReader(payload)), ContentLength: -1})
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), n)
	assert.Equal(t, payload, w.Bytes())
	for _, size := range w.writes {
		assert.LessOrEqual(t, size, chunkSize)
	}
	assert.Equal(t, len(w.writes), w.flushes)
	expected := fmt.Sprintf(`
# HELP storage_proxy_bytes_total Bytes streamed through the storage proxy
# TYPE storage_proxy_bytes_total counter
storage_proxy_bytes_total %d
`, len(payload))
	require.NoError(t, testutil.GatherAndCompare(reg.Gatherer(), strings.NewReader(expected), "storage_proxy_bytes_total"))
}

func TestReadAllEnforcesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", 20))
	}))
	defer srv.Close()

	p := New(time.Second, nil, nil)
	data, err := p.ReadAll(context.Background(), srv.URL, 20)
	require.NoError(t, err)
	assert.Len(t, data, 20)

	_, err = p.ReadAll(context.Background(), srv.URL, 10)
	require.ErrorIs(t, err, ErrTooBig)
}
