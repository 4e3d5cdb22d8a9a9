package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrappedSentinelMatches(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("fetch object: %w", Wrap(ErrUpstream, cause))

	require.True(t, errors.Is(err, ErrUpstream))
	require.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, KindOf(errors.New("boom")).Status())
}

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindValidation, http.StatusBadRequest},
		{KindPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{KindNotFound, http.StatusNotFound},
		{KindUpstream, http.StatusBadGateway},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Status())
	}
}

func TestDistinctCodesWithSameKindDoNotMatch(t *testing.T) {
	a := New(KindNotFound, "upload_not_found", "Upload not found")
	b := New(KindNotFound, "profile_not_found", "Profile not found")
	assert.False(t, errors.Is(Wrap(a, nil), b))
	assert.True(t, errors.Is(Wrap(a, nil), a))
}
