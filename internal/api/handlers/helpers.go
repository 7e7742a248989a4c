// Package handlers contains the HTTP handlers for the barduino API.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rafaelgorayb/barduino/internal/api/ctxkeys"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// getDeviceID retrieves the authenticated device id from context.
// Uses ctxkeys.DeviceID — same type+value as the AuthMiddleware injection.
func getDeviceID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(ctxkeys.DeviceID).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("device_id not found in context")
	}
	return id, nil
}

// parseLimit extracts and bounds the limit query param.
func parseLimit(r *http.Request) int {
	limit := defaultHistoryLimit
	if lim, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && lim > 0 {
		if lim > maxHistoryLimit {
			lim = maxHistoryLimit
		}
		limit = lim
	}
	return limit
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
