package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeError writes {"message": msg} with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]string{"message": msg})
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
