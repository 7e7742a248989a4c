// Shared helpers for handler tests. Tests run against a real in-memory
// SQLite DB — no mocking below the LLM provider boundary.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/rafaelgorayb/barduino/internal/api/ctxkeys"
	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
	"github.com/rafaelgorayb/barduino/internal/infra/llm"
	"github.com/rafaelgorayb/barduino/internal/infra/sqlite"
)

// TestMain sets JWT_SECRET before any handler test runs; GenerateJWT panics
// without it.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

// mustOpenHandlerDB opens an in-memory SQLite DB with all migrations applied.
func mustOpenHandlerDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp error = %v", err)
	}
	return db
}

// mustInsertDrink writes one drink row directly.
func mustInsertDrink(t *testing.T, db *sql.DB, d catalog.Drink) {
	t.Helper()
	emb, err := catalog.EncodeEmbedding(d.Embedding)
	if err != nil {
		t.Fatalf("EncodeEmbedding error = %v", err)
	}
	hasAlcohol := 0
	if d.HasAlcohol {
		hasAlcohol = 1
	}
	_, err = db.Exec(
		"INSERT INTO drink (id, name, description, category, has_alcohol, embedding) VALUES (?, ?, ?, ?, ?, ?)",
		d.ID, d.Name, d.Description, d.Category, hasAlcohol, emb,
	)
	if err != nil {
		t.Fatalf("insert drink %q: %v", d.Name, err)
	}
}

// mustLoadStore builds a loaded catalog store over db.
func mustLoadStore(t *testing.T, db *sql.DB) *catalog.Store {
	t.Helper()
	store := catalog.NewStore(db)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("store.Load error = %v", err)
	}
	return store
}

// withDevice injects an authenticated device id, standing in for AuthMiddleware.
func withDevice(r *http.Request, deviceID string) *http.Request {
	return r.WithContext(ctxkeys.WithValue(r.Context(), ctxkeys.DeviceID, deviceID))
}

// stubLLM is a canned llm.Provider for handler tests.
type stubLLM struct {
	embedVec    []float64
	embedErr    error
	chatContent string
	chatErr     error
}

func (s *stubLLM) Embed(_ context.Context, req llm.EmbedRequest) (*llm.EmbedResponse, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	out := make([][]float64, len(req.Texts))
	for i := range req.Texts {
		out[i] = s.embedVec
	}
	return &llm.EmbedResponse{Embeddings: out}, nil
}

func (s *stubLLM) ChatCompletion(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &llm.ChatResponse{Content: s.chatContent, StopReason: "stop"}, nil
}

func (s *stubLLM) ModelInfo() llm.ModelMeta { return llm.ModelMeta{ID: "stub", Provider: "test"} }

func (s *stubLLM) HealthCheck(context.Context) error { return nil }
