package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/httpserver/deps"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/manager"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps store and manager errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, manager.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrNotBookmarked), errors.Is(err, db.ErrMissingEntity):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrAlreadyBookmarked):
		return http.StatusConflict
	case errors.Is(err, db.ErrInvalidMove), errors.Is(err, db.ErrMissingParent),
		errors.Is(err, db.ErrBadObjectID), errors.Is(err, db.ErrNoObjectID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrStoreDeallocated), errors.Is(err, manager.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed", logger.Error(err))
	} else {
		d.Logger.Debug("request rejected", logger.Int("status", status), logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
