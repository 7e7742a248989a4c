package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rafaelgorayb/barduino/internal/infra/eventbus"
	"github.com/rafaelgorayb/barduino/internal/infra/llm"
)

// TopicCatalogReindexed is published after a reindex run completes.
// Payload: ReindexResult.
const TopicCatalogReindexed = "catalog.reindexed"

// ReindexResult summarises one reindex run.
type ReindexResult struct {
	Embedded int // drinks that received a new embedding
	Skipped  int // drinks that already had one
}

// Reindexer fills in missing drink embeddings. Catalog embeddings are
// precomputed relative to ranking: the recommendation pipeline never embeds
// drinks on demand, it only reads what the reindexer stored.
type Reindexer struct {
	db    *sql.DB
	store *Store
	llm   llm.Provider
	bus   eventbus.EventBus
}

// NewReindexer creates a Reindexer. bus may be nil when no one listens.
func NewReindexer(db *sql.DB, store *Store, provider llm.Provider, bus eventbus.EventBus) *Reindexer {
	return &Reindexer{db: db, store: store, llm: provider, bus: bus}
}

// ReindexPending embeds every drink whose embedding is empty, persists the
// vectors, and reloads the store so ranking sees them. One batch Embed call
// covers all pending drinks. Drinks that already have a vector are not
// re-embedded; use a manual UPDATE to '[]' to force one.
func (r *Reindexer) ReindexPending(ctx context.Context) (*ReindexResult, error) {
	pending := make([]Drink, 0)
	skipped := 0
	for _, d := range r.store.Drinks() {
		if d.Embedded() {
			skipped++
			continue
		}
		pending = append(pending, d)
	}

	result := &ReindexResult{Skipped: skipped}
	if len(pending) == 0 {
		r.publish(result)
		return result, nil
	}

	texts := make([]string, len(pending))
	for i, d := range pending {
		texts[i] = d.EmbeddingText()
	}

	resp, err := r.llm.Embed(ctx, llm.EmbedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("reindex: embed catalog: %w", err)
	}
	if len(resp.Embeddings) != len(pending) {
		return nil, fmt.Errorf("reindex: got %d embeddings for %d drinks", len(resp.Embeddings), len(pending))
	}

	if err := r.storeVectors(ctx, pending, resp.Embeddings); err != nil {
		return nil, err
	}

	if err := r.store.Reload(ctx); err != nil {
		return nil, fmt.Errorf("reindex: reload store: %w", err)
	}

	result.Embedded = len(pending)
	r.publish(result)
	return result, nil
}

// storeVectors writes the embeddings in a single transaction so a partial
// failure never leaves the catalog half-embedded with this batch.
func (r *Reindexer) storeVectors(ctx context.Context, drinks []Drink, vecs [][]float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reindex: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, d := range drinks {
		embJSON, encErr := EncodeEmbedding(vecs[i])
		if encErr != nil {
			return fmt.Errorf("reindex: encode embedding for %q: %w", d.Name, encErr)
		}
		if _, execErr := tx.ExecContext(ctx, "UPDATE drink SET embedding = ? WHERE id = ?", embJSON, d.ID); execErr != nil {
			return fmt.Errorf("reindex: update %q: %w", d.Name, execErr)
		}
	}
	return tx.Commit()
}

func (r *Reindexer) publish(result *ReindexResult) {
	if r.bus != nil {
		r.bus.Publish(TopicCatalogReindexed, *result)
	}
}
