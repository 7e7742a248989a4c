// HTTP handler for recent session outcomes.
package handlers

import (
	"net/http"
	"time"

	"github.com/rafaelgorayb/barduino/internal/domain/recommend"
)

// HistoryHandler serves persisted session outcomes.
type HistoryHandler struct {
	history *recommend.HistoryStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *recommend.HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// SessionRecordResponse is one persisted session outcome.
type SessionRecordResponse struct {
	ID             string    `json:"id"`
	DeviceID       string    `json:"deviceId"`
	Phase          string    `json:"phase"`
	Reason         string    `json:"reason,omitempty"`
	PrimaryDrinkID string    `json:"primaryDrinkId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListHistoryResponse is the response body for GET /api/v1/history.
type ListHistoryResponse struct {
	Data []SessionRecordResponse `json:"data"`
}

// ListHistory handles GET /api/v1/history?limit=N, newest first.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.Recent(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session history")
		return
	}

	data := make([]SessionRecordResponse, len(records))
	for i, rec := range records {
		data[i] = SessionRecordResponse{
			ID:             rec.ID,
			DeviceID:       rec.DeviceID,
			Phase:          string(rec.Phase),
			Reason:         string(rec.Reason),
			PrimaryDrinkID: rec.PrimaryDrinkID,
			CreatedAt:      rec.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, ListHistoryResponse{Data: data})
}
