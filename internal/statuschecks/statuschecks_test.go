package statuschecks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatusRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func TestCreateAndListStatusChecks(t *testing.T) {
	r := newStatusRouter(NewService(NewMemoryRepo()))

	for _, name := range []string{"web", "mobile"} {
		body, _ := json.Marshal(map[string]string{"client_name": name})
		req := httptest.NewRequest(http.MethodPost, "/api/status", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		require.Equal(t, http.StatusOK, resp.Code)

		var sc StatusCheck
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sc))
		assert.Equal(t, name, sc.ClientName)
		assert.NotEmpty(t, sc.ID)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var items []StatusCheck
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "web", items[0].ClientName)
}

func TestCreateRequiresClientName(t *testing.T) {
	r := newStatusRouter(NewService(NewMemoryRepo()))
	req := httptest.NewRequest(http.MethodPost, "/api/status", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	_, err := NewService(NewMemoryRepo()).Create(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMemoryRepoListLimit(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(context.Background(), StatusCheck{ID: string(rune('a' + i)), Timestamp: base.Add(time.Duration(i) * time.Second)}))
	}
	items, err := repo.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
}

func TestPGRepo(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPGRepo(sqlx.NewDb(db, "sqlmock"))

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO status_checks")).
		WithArgs("id-1", "web", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), StatusCheck{ID: "id-1", ClientName: "web", Timestamp: now}))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, client_name, timestamp FROM status_checks")).
		WithArgs(1000).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_name", "timestamp"}).AddRow("id-1", "web", now))
	items, err := repo.List(context.Background(), listLimit)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "web", items[0].ClientName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUnreachableIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("SELECT").WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("i/o timeout")})

	r := newStatusRouter(NewService(NewPGRepo(sqlx.NewDb(db, "sqlmock"))))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "i/o timeout")
	require.NoError(t, mock.ExpectationsWereMet())
}
