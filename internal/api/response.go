package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/loan"
	"github.com/erazemk/izposoja/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// writeError maps domain errors to HTTP statuses. Unknown errors are logged
// and reported as 500 with the given fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var notAllowed *loan.ActionNotAllowedError
	switch {
	case errors.Is(err, authz.ErrNotAuthenticated):
		jsonError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, authz.ErrForbidden), errors.Is(err, loan.ErrNotAParty):
		jsonError(w, http.StatusForbidden, "forbidden")
	case errors.As(err, &notAllowed):
		jsonError(w, http.StatusUnprocessableEntity, notAllowed.Error())
	case errors.Is(err, loan.ErrProtocolLocked):
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrVersionConflict):
		jsonError(w, http.StatusConflict, "loan was modified concurrently, reload and retry")
	case errors.Is(err, store.ErrAlreadyReviewed):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}
