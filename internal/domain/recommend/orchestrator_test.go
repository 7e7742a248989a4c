package recommend

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
	"github.com/rafaelgorayb/barduino/internal/infra/eventbus"
	"github.com/rafaelgorayb/barduino/internal/infra/llm"
	"github.com/rafaelgorayb/barduino/internal/infra/sqlite"
)

// pipelineStub is an in-memory llm.Provider for pipeline tests. Call counts
// are atomic so assertions can run while the orchestrator goroutine is live.
type pipelineStub struct {
	embedVec []float64
	embedErr error

	// chatReply builds the assistant reply from the outgoing request.
	chatReply func(req llm.ChatRequest) (string, error)

	// When chatGate is non-nil the first chat call blocks until the gate is
	// closed or its context is cancelled. Used to hold a session in
	// AwaitingLLM while a second request supersedes it.
	chatGate    chan struct{}
	chatStarted chan struct{}

	embedCalls atomic.Int32
	chatCalls  atomic.Int32
}

func (s *pipelineStub) Embed(_ context.Context, req llm.EmbedRequest) (*llm.EmbedResponse, error) {
	s.embedCalls.Add(1)
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	out := make([][]float64, len(req.Texts))
	for i := range req.Texts {
		out[i] = s.embedVec
	}
	return &llm.EmbedResponse{Embeddings: out}, nil
}

func (s *pipelineStub) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	n := s.chatCalls.Add(1)
	if s.chatStarted != nil {
		s.chatStarted <- struct{}{}
	}
	if s.chatGate != nil && n == 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.chatGate:
		}
	}
	content, err := s.chatReply(req)
	if err != nil {
		return nil, err
	}
	return &llm.ChatResponse{Content: content, StopReason: "stop"}, nil
}

func (s *pipelineStub) ModelInfo() llm.ModelMeta { return llm.ModelMeta{ID: "stub", Provider: "test"} }

func (s *pipelineStub) HealthCheck(context.Context) error { return nil }

// replyNaming returns a chatReply that recommends every given drink name that
// appears in the outgoing prompt, in the given order.
func replyNaming(names ...string) func(llm.ChatRequest) (string, error) {
	return func(req llm.ChatRequest) (string, error) {
		prompt := req.Messages[len(req.Messages)-1].Content
		var entries []string
		for _, name := range names {
			if strings.Contains(prompt, name) {
				entries = append(entries, `{"drink_name":"`+name+`","explanation":"good fit"}`)
			}
		}
		return `{"recommendations":[` + strings.Join(entries, ",") + `]}`, nil
	}
}

// newTestCatalog returns a loaded store over a migrated in-memory DB.
func newTestCatalog(t *testing.T, drinks ...catalog.Drink) (*catalog.Store, *sql.DB) {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	for _, d := range drinks {
		emb, encErr := catalog.EncodeEmbedding(d.Embedding)
		if encErr != nil {
			t.Fatalf("EncodeEmbedding failed: %v", encErr)
		}
		hasAlcohol := 0
		if d.HasAlcohol {
			hasAlcohol = 1
		}
		if _, err := db.Exec(
			"INSERT INTO drink (id, name, description, has_alcohol, embedding) VALUES (?, ?, ?, ?, ?)",
			d.ID, d.Name, d.Description, hasAlcohol, emb,
		); err != nil {
			t.Fatalf("insert drink %q: %v", d.Name, err)
		}
	}

	store := catalog.NewStore(db)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store, db
}

// waitForTerminal consumes bus events until the session identified by token
// reaches Completed or Failed.
func waitForTerminal(t *testing.T, events <-chan eventbus.Event, token uint64) Snapshot {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case evt := <-events:
			snap, ok := evt.Payload.(Snapshot)
			if !ok {
				t.Fatalf("unexpected payload type %T", evt.Payload)
			}
			if snap.Token != token {
				continue
			}
			if snap.Phase == PhaseCompleted || snap.Phase == PhaseFailed {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for terminal snapshot of session %d", token)
		}
	}
}

func barCatalog() []catalog.Drink {
	return []catalog.Drink{
		{ID: "d1", Name: "Mojito", HasAlcohol: true, Embedding: []float64{1, 0}},
		{ID: "d2", Name: "Negroni", HasAlcohol: true, Embedding: []float64{0.9, 0.1}},
		{ID: "d3", Name: "Whiskey Sour", HasAlcohol: true, Embedding: []float64{0, 1}},
		{ID: "d4", Name: "Virgin Mojito", HasAlcohol: false, Embedding: []float64{1, 0}},
	}
}

func TestOrchestrator_CompletesInLLMOrder(t *testing.T) {
	store, _ := newTestCatalog(t, barCatalog()...)
	// The LLM disagrees with the cosine order; its ranking wins.
	stub := &pipelineStub{
		embedVec:  []float64{1, 0},
		chatReply: replyNaming("Whiskey Sour", "Negroni", "Mojito"),
	}
	bus := eventbus.New()
	events := bus.Subscribe(TopicSessionUpdated)

	orch := NewOrchestrator(store, stub, bus, nil, 3)
	snap, err := orch.Request("kiosk-1", fullProfile())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if snap.Phase != PhaseAwaitingEmbedding {
		t.Errorf("initial phase = %q, want %q", snap.Phase, PhaseAwaitingEmbedding)
	}

	final := waitForTerminal(t, events, snap.Token)
	if final.Phase != PhaseCompleted {
		t.Fatalf("expected completion, got %q (%s)", final.Phase, final.Reason)
	}
	if len(final.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(final.Recommendations))
	}
	want := []string{"Whiskey Sour", "Negroni", "Mojito"}
	for i, rec := range final.Recommendations {
		if rec.Drink.Name != want[i] {
			t.Errorf("recommendation %d = %q, want %q", i, rec.Drink.Name, want[i])
		}
	}
	if p := final.Primary(); p == nil || p.Drink.Name != "Whiskey Sour" {
		t.Errorf("unexpected primary: %+v", final.Primary())
	}
	if got := orch.Snapshot(); got.Phase != PhaseCompleted {
		t.Errorf("Snapshot() = %q, want completed", got.Phase)
	}
}

func TestOrchestrator_IncompleteProfileRejectedBeforeAnyCall(t *testing.T) {
	store, _ := newTestCatalog(t, barCatalog()...)
	stub := &pipelineStub{embedVec: []float64{1, 0}, chatReply: replyNaming("Mojito")}
	orch := NewOrchestrator(store, stub, eventbus.New(), nil, 3)

	p := fullProfile()
	p.Mood = ""
	if _, err := orch.Request("kiosk-1", p); !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
	if stub.embedCalls.Load() != 0 || stub.chatCalls.Load() != 0 {
		t.Error("rejected request must not reach the provider")
	}
}

func TestOrchestrator_EmbedFailureFailsWithoutChatCall(t *testing.T) {
	store, _ := newTestCatalog(t, barCatalog()...)
	stub := &pipelineStub{embedErr: errors.New("connection refused")}
	bus := eventbus.New()
	events := bus.Subscribe(TopicSessionUpdated)

	orch := NewOrchestrator(store, stub, bus, nil, 3)
	snap, err := orch.Request("kiosk-1", fullProfile())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	final := waitForTerminal(t, events, snap.Token)
	if final.Phase != PhaseFailed || final.Reason != ReasonEmbeddingUnavailable {
		t.Errorf("expected embedding failure, got phase=%q reason=%q", final.Phase, final.Reason)
	}
	if final.Message == "" {
		t.Error("failed snapshot must carry a user message")
	}
	if stub.chatCalls.Load() != 0 {
		t.Error("failed embedding must short-circuit the LLM call")
	}
}

func TestOrchestrator_EmptyFilterFailsWithNoMatchingDrinks(t *testing.T) {
	// Catalog has only alcoholic drinks; the kiosk asks for alcohol-free.
	store, _ := newTestCatalog(t,
		catalog.Drink{ID: "d1", Name: "Negroni", HasAlcohol: true, Embedding: []float64{1, 0}},
	)
	stub := &pipelineStub{embedVec: []float64{1, 0}, chatReply: replyNaming("Negroni")}
	bus := eventbus.New()
	events := bus.Subscribe(TopicSessionUpdated)

	p := fullProfile()
	p.Alcohol = AnswerAlcoholFree

	orch := NewOrchestrator(store, stub, bus, nil, 3)
	snap, err := orch.Request("kiosk-1", p)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	final := waitForTerminal(t, events, snap.Token)
	if final.Phase != PhaseFailed || final.Reason != ReasonNoMatchingDrinks {
		t.Errorf("expected no-matching-drinks failure, got phase=%q reason=%q", final.Phase, final.Reason)
	}
	if stub.chatCalls.Load() != 0 {
		t.Error("empty candidate set must short-circuit the LLM call")
	}
}

func TestOrchestrator_UnparseableReplyFails(t *testing.T) {
	store, _ := newTestCatalog(t, barCatalog()...)
	stub := &pipelineStub{
		embedVec:  []float64{1, 0},
		chatReply: func(llm.ChatRequest) (string, error) { return "I recommend a nice cold drink!", nil },
	}
	bus := eventbus.New()
	events := bus.Subscribe(TopicSessionUpdated)

	orch := NewOrchestrator(store, stub, bus, nil, 3)
	snap, _ := orch.Request("kiosk-1", fullProfile())

	final := waitForTerminal(t, events, snap.Token)
	if final.Phase != PhaseFailed || final.Reason != ReasonParseFailed {
		t.Errorf("expected parse failure, got phase=%q reason=%q", final.Phase, final.Reason)
	}
}

func TestOrchestrator_UnreconcilableNamesFail(t *testing.T) {
	store, _ := newTestCatalog(t, barCatalog()...)
	stub := &pipelineStub{
		embedVec: []float64{1, 0},
		chatReply: func(llm.ChatRequest) (string, error) {
			return `{"recommendations":[{"drink_name":"Aperol Spritz","explanation":"invented"}]}`, nil
		},
	}
	bus := eventbus.New()
	events := bus.Subscribe(TopicSessionUpdated)

	orch := NewOrchestrator(store, stub, bus, nil, 3)
	snap, _ := orch.Request("kiosk-1", fullProfile())

	final := waitForTerminal(t, events, snap.Token)
	if final.Phase != PhaseFailed || final.Reason != ReasonNoDrinksMatched {
		t.Errorf("expected no-drinks-matched failure, got phase=%q reason=%q", final.Phase, final.Reason)
	}
}

func TestOrchestrator_SupersededRequestLosesToNewer(t *testing.T) {
	store, _ := newTestCatalog(t, barCatalog()...)
	stub := &pipelineStub{
		embedVec:    []float64{1, 0},
		chatReply:   replyNaming("Negroni", "Virgin Mojito"),
		chatGate:    make(chan struct{}),
		chatStarted: make(chan struct{}, 4),
	}
	bus := eventbus.New()
	events := bus.Subscribe(TopicSessionUpdated)

	orch := NewOrchestrator(store, stub, bus, nil, 3)

	// Request A asks for alcohol; its LLM call blocks on the gate.
	snapA, err := orch.Request("kiosk-1", fullProfile())
	if err != nil {
		t.Fatalf("request A failed: %v", err)
	}
	select {
	case <-stub.chatStarted:
	case <-time.After(3 * time.Second):
		t.Fatal("request A never reached the LLM call")
	}

	// Request B supersedes A while A is stuck in AwaitingLLM.
	pB := fullProfile()
	pB.Alcohol = AnswerAlcoholFree
	snapB, err := orch.Request("kiosk-1", pB)
	if err != nil {
		t.Fatalf("request B failed: %v", err)
	}
	if snapB.Token <= snapA.Token {
		t.Fatalf("superseding request must bump the token: A=%d B=%d", snapA.Token, snapB.Token)
	}

	final := waitForTerminal(t, events, snapB.Token)
	if final.Phase != PhaseCompleted {
		t.Fatalf("expected B to complete, got %q (%s)", final.Phase, final.Reason)
	}
	if p := final.Primary(); p == nil || p.Drink.Name != "Virgin Mojito" {
		t.Errorf("expected B's alcohol-free pick, got %+v", final.Primary())
	}

	// A's cancelled pipeline must not overwrite B's outcome.
	close(stub.chatGate)
	time.Sleep(50 * time.Millisecond)
	got := orch.Snapshot()
	if got.Token != snapB.Token || got.Phase != PhaseCompleted {
		t.Errorf("superseded session leaked into current state: %+v", got)
	}
}

func TestOrchestrator_ResetReturnsToIdle(t *testing.T) {
	store, _ := newTestCatalog(t, barCatalog()...)
	stub := &pipelineStub{embedVec: []float64{1, 0}, chatReply: replyNaming("Mojito")}
	orch := NewOrchestrator(store, stub, eventbus.New(), nil, 3)

	if _, err := orch.Request("kiosk-1", fullProfile()); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	orch.Reset()

	got := orch.Snapshot()
	if got.Phase != PhaseIdle {
		t.Errorf("expected idle after reset, got %q", got.Phase)
	}
	if len(got.Recommendations) != 0 {
		t.Error("reset must clear recommendations")
	}
}

func TestOrchestrator_RecordsTerminalSessions(t *testing.T) {
	store, db := newTestCatalog(t, barCatalog()...)
	stub := &pipelineStub{embedVec: []float64{1, 0}, chatReply: replyNaming("Mojito")}
	bus := eventbus.New()
	events := bus.Subscribe(TopicSessionUpdated)
	history := NewHistoryStore(db)

	orch := NewOrchestrator(store, stub, bus, history, 3)
	snap, err := orch.Request("kiosk-1", fullProfile())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	waitForTerminal(t, events, snap.Token)

	records, err := history.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 session record, got %d", len(records))
	}
	rec := records[0]
	if rec.DeviceID != "kiosk-1" || rec.Phase != PhaseCompleted || rec.PrimaryDrinkID != "d1" {
		t.Errorf("unexpected session record: %+v", rec)
	}
}
