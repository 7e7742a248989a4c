package recommend

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
	"github.com/rafaelgorayb/barduino/internal/infra/eventbus"
	"github.com/rafaelgorayb/barduino/internal/infra/llm"
)

// TopicSessionUpdated carries Snapshot payloads, one per state transition.
const TopicSessionUpdated = "recommendation.session_updated"

// ErrProfileIncomplete is returned by Request before any network call when a
// required preference dimension is unanswered.
var ErrProfileIncomplete = errors.New("preference profile is incomplete")

// Phase is the lifecycle stage of a recommendation session.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseAwaitingEmbedding Phase = "awaiting_embedding"
	PhaseRanking           Phase = "ranking"
	PhaseAwaitingLLM       Phase = "awaiting_llm"
	PhaseCompleted         Phase = "completed"
	PhaseFailed            Phase = "failed"
)

// FailReason identifies why a session failed. The values double as log keys;
// UserMessage translates them for the kiosk screen.
type FailReason string

const (
	ReasonEmbeddingUnavailable      FailReason = "embedding unavailable"
	ReasonNoMatchingDrinks          FailReason = "no matching drinks"
	ReasonRecommendationUnavailable FailReason = "recommendation unavailable"
	ReasonParseFailed               FailReason = "could not parse recommendation"
	ReasonNoDrinksMatched           FailReason = "no drinks matched"
)

// UserMessage returns the kiosk-facing text for a failure. Causes are logged,
// never exposed.
func (r FailReason) UserMessage() string {
	switch r {
	case ReasonEmbeddingUnavailable:
		return "We could not process your preferences right now. Please try again."
	case ReasonNoMatchingDrinks:
		return "Sorry, we have no drinks matching your alcohol preference."
	case ReasonRecommendationUnavailable:
		return "We could not get a recommendation right now. Please try again."
	case ReasonParseFailed:
		return "We could not understand the recommendation. Please try again."
	case ReasonNoDrinksMatched:
		return "No drinks on our menu matched the recommendation."
	default:
		return "Something went wrong. Please try again."
	}
}

// Snapshot is an immutable view of the current session, published on the bus
// after every state change. The rendering layer only ever sees snapshots —
// never a mutable reference into the orchestrator.
type Snapshot struct {
	Token           uint64           `json:"token"`
	DeviceID        string           `json:"deviceId"`
	Phase           Phase            `json:"phase"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Reason          FailReason       `json:"reason,omitempty"`
	Message         string           `json:"message,omitempty"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Primary returns the top pick, or nil before completion.
func (s Snapshot) Primary() *Recommendation {
	if len(s.Recommendations) == 0 {
		return nil
	}
	return &s.Recommendations[0]
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Recommendations != nil {
		out.Recommendations = make([]Recommendation, len(s.Recommendations))
		copy(out.Recommendations, s.Recommendations)
	}
	return out
}

// Orchestrator runs the recommendation pipeline for one kiosk:
// embed preferences → rank catalog → LLM re-rank/explain → reconcile.
//
// Single-flight with supersede: at most one session is in flight; a new
// Request cancels the previous one and bumps the session token. Every state
// publish re-checks the token under the lock, so a callback from a superseded
// request can never overwrite the current session's state.
type Orchestrator struct {
	store   *catalog.Store
	llm     llm.Provider
	bus     eventbus.EventBus
	history *HistoryStore // optional
	topK    int

	mu     sync.Mutex // guards token, cancel, snap
	token  uint64
	cancel context.CancelFunc
	snap   Snapshot
}

// NewOrchestrator creates an Orchestrator. history may be nil to disable
// session persistence; bus must be non-nil.
func NewOrchestrator(store *catalog.Store, provider llm.Provider, bus eventbus.EventBus, history *HistoryStore, topK int) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		llm:     provider,
		bus:     bus,
		history: history,
		topK:    topK,
		snap:    Snapshot{Phase: PhaseIdle, UpdatedAt: time.Now()},
	}
	return o
}

// Request validates the profile and starts the pipeline. It returns the
// initial AwaitingEmbedding snapshot synchronously; progress is published on
// the bus and readable via Snapshot. An in-flight session is superseded: its
// context is cancelled and any late callback it still produces is discarded
// by the token guard.
func (o *Orchestrator) Request(deviceID string, profile PreferenceProfile) (Snapshot, error) {
	if !profile.Complete() {
		return Snapshot{}, ErrProfileIncomplete
	}

	// The pipeline must outlive the HTTP request that started it, so the run
	// context derives from Background, not from the caller's context.
	runCtx, cancel := context.WithCancel(context.Background())

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.token++
	token := o.token
	o.cancel = cancel
	o.snap = Snapshot{
		Token:     token,
		DeviceID:  deviceID,
		Phase:     PhaseAwaitingEmbedding,
		UpdatedAt: time.Now(),
	}
	snap := o.snap.clone()
	o.mu.Unlock()

	o.bus.Publish(TopicSessionUpdated, snap)
	go o.run(runCtx, token, profile)
	return snap, nil
}

// Snapshot returns the current session state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap.clone()
}

// Reset cancels any in-flight session and returns to Idle. Used when the
// kiosk navigates away mid-request; the cancelled pipeline's callbacks are
// suppressed by the token bump.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.token++
	o.snap = Snapshot{Token: o.token, Phase: PhaseIdle, UpdatedAt: time.Now()}
	snap := o.snap.clone()
	o.mu.Unlock()

	o.bus.Publish(TopicSessionUpdated, snap)
}

// run executes the pipeline for one session token. The steps are strictly
// sequential: the LLM call is never issued before embedding and ranking have
// both succeeded, because the ranked candidate names are a required prompt
// input.
func (o *Orchestrator) run(ctx context.Context, token uint64, profile PreferenceProfile) {
	// Step 1: embed the preference text.
	embedResp, err := o.llm.Embed(ctx, llm.EmbedRequest{Texts: []string{PreferenceText(profile)}})
	if err != nil || len(embedResp.Embeddings) == 0 || len(embedResp.Embeddings[0]) == 0 {
		o.fail(token, ReasonEmbeddingUnavailable, err)
		return
	}
	query := embedResp.Embeddings[0]

	// Step 2: rank the filtered catalog. Synchronous, CPU-bound, no suspension.
	o.publishPhase(token, PhaseRanking)
	ranked, err := Rank(query, o.store.Drinks(), profile.WantsAlcohol(), o.topK)
	if err != nil {
		// A dimensionality mismatch means the query vector is unusable
		// against this catalog; same degraded outcome as a failed embed.
		o.fail(token, ReasonEmbeddingUnavailable, err)
		return
	}
	if len(ranked) == 0 {
		o.fail(token, ReasonNoMatchingDrinks, nil)
		return
	}

	candidates := make([]catalog.Drink, len(ranked))
	names := make([]string, len(ranked))
	for i, r := range ranked {
		candidates[i] = r.Drink
		names[i] = r.Drink.Name
	}

	// Step 3: LLM re-rank and explain.
	o.publishPhase(token, PhaseAwaitingLLM)
	chatResp, err := o.llm.ChatCompletion(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: SystemPreamble},
			{Role: "user", Content: RankingPrompt(profile, names)},
		},
		Temperature: 0.2,
		MaxTokens:   600,
	})
	if err != nil {
		o.fail(token, ReasonRecommendationUnavailable, err)
		return
	}

	// Step 4: extract, parse, reconcile.
	recs, err := ExtractRecommendations(chatResp.Content, candidates)
	if err != nil {
		o.fail(token, ReasonParseFailed, err)
		return
	}
	if len(recs) == 0 {
		o.fail(token, ReasonNoDrinksMatched, nil)
		return
	}

	o.complete(token, recs)
}

// publishPhase records an intermediate phase transition, unless superseded.
func (o *Orchestrator) publishPhase(token uint64, phase Phase) {
	o.publish(token, func(s *Snapshot) {
		s.Phase = phase
	})
}

// fail records a terminal failure. The cause is logged, only the reason and
// its user message are published.
func (o *Orchestrator) fail(token uint64, reason FailReason, cause error) {
	if cause != nil {
		log.Printf("recommend: session %d failed (%s): %v", token, reason, cause)
	}
	o.publish(token, func(s *Snapshot) {
		s.Phase = PhaseFailed
		s.Reason = reason
		s.Message = reason.UserMessage()
	})
}

// complete records a successful session.
func (o *Orchestrator) complete(token uint64, recs []Recommendation) {
	o.publish(token, func(s *Snapshot) {
		s.Phase = PhaseCompleted
		s.Recommendations = recs
	})
}

// publish applies update to the current snapshot and broadcasts it, but only
// if token still identifies the live session. Returns false when the session
// was superseded and the update was discarded.
func (o *Orchestrator) publish(token uint64, update func(*Snapshot)) bool {
	o.mu.Lock()
	if token != o.token {
		o.mu.Unlock()
		return false
	}
	update(&o.snap)
	o.snap.UpdatedAt = time.Now()
	snap := o.snap.clone()
	o.mu.Unlock()

	o.record(snap)
	o.bus.Publish(TopicSessionUpdated, snap)
	return true
}

// record persists terminal snapshots, best effort.
func (o *Orchestrator) record(snap Snapshot) {
	if o.history == nil {
		return
	}
	if snap.Phase != PhaseCompleted && snap.Phase != PhaseFailed {
		return
	}
	if err := o.history.Record(context.Background(), snap); err != nil {
		log.Printf("recommend: record session history: %v", err)
	}
}
