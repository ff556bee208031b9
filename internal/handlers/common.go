// Package handlers implements the synchronization protocol endpoints.
// Every mutation endpoint applies its store change and disk write
// before the success response goes out, so the client never sees a
// success for an edit that was not accepted.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"syscall"

	"dataset-builder/internal/dataset"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ItemsResponse reports the post-mutation view of the dataset.
type ItemsResponse struct {
	Status      string         `json:"status"`
	Items       []dataset.Item `json:"items"`
	LastUpdated string         `json:"last_updated"`
	Message     string         `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil && !isClientDisconnect(err) {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Status: "error", Message: message})
}

// isClientDisconnect reports whether err is transport noise from the
// peer going away mid read or write. These are expected operating
// conditions for a browser client and are logged, never propagated.
func isClientDisconnect(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
