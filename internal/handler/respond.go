package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/newstech/newstech/internal/ctxkeys"
	"github.com/newstech/newstech/internal/repository"
	"github.com/newstech/newstech/internal/service"
	"github.com/newstech/newstech/internal/validation"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// decodeJSON reads a JSON body into dst. An empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

var conflictMessages = map[string]string{
	"email":     "email already in use",
	"username":  "username already in use",
	"google_id": "account already linked to a different Google identity",
	"github_id": "account already linked to a different GitHub identity",
}

// writeServiceError maps domain errors to status codes. Anything unrecognized
// is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeMessage(w, http.StatusBadRequest, verr.Message)
		return
	}

	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		msg, ok := conflictMessages[conflict.Field]
		if !ok {
			msg = "account already exists"
		}
		writeMessage(w, http.StatusConflict, msg)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrProviderVerification):
		slog.Warn("provider verification failed", "error", err, "path", r.URL.Path)
		writeMessage(w, http.StatusUnauthorized, "invalid or expired provider token")
	case errors.Is(err, service.ErrProviderNotConfigured):
		writeMessage(w, http.StatusServiceUnavailable, "service not configured")
	case errors.Is(err, service.ErrProviderUnavailable):
		slog.Error("upstream provider failed", "error", err, "path", r.URL.Path)
		writeMessage(w, http.StatusBadGateway, "upstream service unavailable")
	case errors.Is(err, service.ErrMissingCoordinates):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound):
		writeMessage(w, http.StatusNotFound, "user not found")
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "endpoint not found")
}
