// HTTP handlers for the recommendation session endpoints. The pipeline is
// asynchronous: POST starts it and returns 202 with the initial snapshot, GET
// polls the current state.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rafaelgorayb/barduino/internal/domain/recommend"
)

// RecommendationHandler exposes the session orchestrator over HTTP.
type RecommendationHandler struct {
	orchestrator *recommend.Orchestrator
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(orchestrator *recommend.Orchestrator) *RecommendationHandler {
	return &RecommendationHandler{orchestrator: orchestrator}
}

// RecommendationRequest is the request body for POST /api/v1/recommendations:
// the kiosk questionnaire answers, one field per dimension.
type RecommendationRequest struct {
	Mood        string `json:"mood"`
	Flavor      string `json:"flavor"`
	Style       string `json:"style"`
	Temperature string `json:"temperature"`
	Experience  string `json:"experience"`
	Dietary     string `json:"dietary"`
	Base        string `json:"base"`
	Alcohol     string `json:"alcohol"`
}

// RecommendationEntry is one (drink, explanation) pair in LLM rank order.
type RecommendationEntry struct {
	Drink       DrinkResponse `json:"drink"`
	Explanation string        `json:"explanation"`
}

// SessionResponse is the wire form of a session snapshot.
type SessionResponse struct {
	Token           uint64                `json:"token"`
	Phase           string                `json:"phase"`
	Recommendations []RecommendationEntry `json:"recommendations,omitempty"`
	Primary         *RecommendationEntry  `json:"primary,omitempty"`
	Message         string                `json:"message,omitempty"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// Request handles POST /api/v1/recommendations.
//
// Response codes:
//   - 202 Accepted: pipeline started, body is the AwaitingEmbedding snapshot
//   - 400 Bad Request: invalid JSON or incomplete profile
func (h *RecommendationHandler) Request(w http.ResponseWriter, r *http.Request) {
	deviceID, err := getDeviceID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing device identity")
		return
	}

	var req RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.orchestrator.Request(deviceID, recommend.PreferenceProfile{
		Mood:        req.Mood,
		Flavor:      req.Flavor,
		Style:       req.Style,
		Temperature: req.Temperature,
		Experience:  req.Experience,
		Dietary:     req.Dietary,
		Base:        req.Base,
		Alcohol:     req.Alcohol,
	})
	if err != nil {
		if errors.Is(err, recommend.ErrProfileIncomplete) {
			writeError(w, http.StatusBadRequest, "all required preference questions must be answered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start recommendation")
		return
	}

	writeJSON(w, http.StatusAccepted, sessionToResponse(snap))
}

// Current handles GET /api/v1/recommendations/current.
func (h *RecommendationHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionToResponse(h.orchestrator.Snapshot()))
}

// Reset handles DELETE /api/v1/recommendations/current: the kiosk navigated
// away, any in-flight pipeline is cancelled.
func (h *RecommendationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Reset()
	writeJSON(w, http.StatusOK, sessionToResponse(h.orchestrator.Snapshot()))
}

func sessionToResponse(snap recommend.Snapshot) SessionResponse {
	resp := SessionResponse{
		Token:     snap.Token,
		Phase:     string(snap.Phase),
		Message:   snap.Message,
		UpdatedAt: snap.UpdatedAt,
	}
	for _, rec := range snap.Recommendations {
		resp.Recommendations = append(resp.Recommendations, RecommendationEntry{
			Drink:       drinkToResponse(rec.Drink),
			Explanation: rec.Explanation,
		})
	}
	if len(resp.Recommendations) > 0 {
		resp.Primary = &resp.Recommendations[0]
	}
	return resp
}
