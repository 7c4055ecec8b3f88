package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

func TestRespondErrorStoreUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("%w: dial tcp 127.0.0.1:5432: connect: connection refused", shared.ErrStoreUnavailable))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRespondErrorDeadlineIsRetryable(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("query materials: %w", context.DeadlineExceeded))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRespondErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrInsufficientStock, http.StatusConflict},
		{shared.ErrDuplicateReturn, http.StatusConflict},
		{shared.ErrInvalidState, http.StatusConflict},
		{shared.ErrValidation, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}
