// HTTP handler for the catalog embedding reindex endpoint.
package handlers

import (
	"net/http"

	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
)

// ReindexHandler triggers embedding of un-embedded catalog drinks.
type ReindexHandler struct {
	reindexer *catalog.Reindexer
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(reindexer *catalog.Reindexer) *ReindexHandler {
	return &ReindexHandler{reindexer: reindexer}
}

// ReindexResponse is the response body for a reindex run.
type ReindexResponse struct {
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
}

// Reindex handles POST /api/v1/catalog/reindex. The run is synchronous: the
// caller is an operator, not a kiosk session, and wants the outcome.
//
// Response codes:
//   - 200 OK: reindex completed (possibly a no-op)
//   - 502 Bad Gateway: the embedding provider failed
func (h *ReindexHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	result, err := h.reindexer.ReindexPending(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "reindex failed: embedding provider unavailable")
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Embedded: result.Embedded, Skipped: result.Skipped})
}
