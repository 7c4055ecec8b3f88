package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// StoreUnavailable is the only retryable member of the taxonomy and is
// surfaced as 503 with a Retry-After hint.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInsufficientStock):
		Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrDuplicateReturn):
		Problem(w, http.StatusConflict, "Duplicate Return", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", "1")
		Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "the data store did not respond, retry with backoff")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
