package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Store holds the in-memory drink catalog. The loaded slice is replaced
// wholesale on Reload, never mutated in place, so snapshots handed out by
// Drinks remain valid and safe to read from any goroutine.
type Store struct {
	db *sql.DB

	mu     sync.RWMutex
	drinks []Drink
	byID   map[string]Drink
}

// NewStore creates a Store backed by the given DB. Call Load before use.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads the full drink table into memory, ordered by name so catalog
// iteration order (and therefore ranking tie-breaks) is deterministic.
func (s *Store) Load(ctx context.Context) error {
	const q = `
		SELECT id, name, description, category, volume_ml, has_alcohol, embedding
		FROM drink
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("catalog: load drinks: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var drinks []Drink
	for rows.Next() {
		var (
			d       Drink
			alcohol int
			embJSON string
		)
		if scanErr := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Category, &d.VolumeML, &alcohol, &embJSON); scanErr != nil {
			return fmt.Errorf("catalog: scan drink: %w", scanErr)
		}
		d.HasAlcohol = alcohol != 0

		emb, decErr := DecodeEmbedding(embJSON)
		if decErr != nil {
			// A malformed vector only disables ranking for this drink;
			// the drink itself stays listable.
			emb = nil
		}
		d.Embedding = emb
		drinks = append(drinks, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("catalog: iterate drinks: %w", err)
	}

	byID := make(map[string]Drink, len(drinks))
	for _, d := range drinks {
		byID[d.ID] = d
	}

	s.mu.Lock()
	s.drinks = drinks
	s.byID = byID
	s.mu.Unlock()
	return nil
}

// Reload re-reads the drink table, e.g. after a reindex wrote new embeddings.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Drinks returns the current catalog snapshot in name order.
// Callers must treat the returned slice as read-only.
func (s *Store) Drinks() []Drink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drinks
}

// ByID returns the drink with the given id, if present.
func (s *Store) ByID(id string) (Drink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	return d, ok
}

// Len returns the number of drinks in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drinks)
}

// Categories returns the distinct drink categories, sorted.
func (s *Store) Categories() []string {
	seen := map[string]struct{}{}
	for _, d := range s.Drinks() {
		if d.Category != "" {
			seen[d.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// EncodeEmbedding serialises a vector to JSON TEXT for storage.
// e.g. [0.1, 0.2, 0.3] → "[0.1,0.2,0.3]"
func EncodeEmbedding(vec []float64) (string, error) {
	if len(vec) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(vec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeEmbedding deserialises a JSON TEXT vector back to []float64.
// "[]" and "" both decode to an empty (un-embedded) vector.
func DecodeEmbedding(jsonStr string) ([]float64, error) {
	if jsonStr == "" || jsonStr == "[]" {
		return nil, nil
	}
	var vec []float64
	if err := json.Unmarshal([]byte(jsonStr), &vec); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	return vec, nil
}
