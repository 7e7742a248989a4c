// Package catalog owns the drink menu: the immutable in-memory store the
// recommendation pipeline ranks against, its SQLite persistence, the YAML
// seed, and the embedding reindexer that fills in drink vectors.
package catalog

// Drink is one catalog entry. Loaded once from SQLite and treated as
// read-only for the process lifetime; Name doubles as the human-readable key
// the LLM output is reconciled against.
type Drink struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	VolumeML    int       `json:"volumeMl"`
	HasAlcohol  bool      `json:"hasAlcohol"`
	Embedding   []float64 `json:"-"` // empty until the reindexer has run
}

// Embedded reports whether this drink carries a usable embedding.
// Un-embedded drinks are excluded from similarity ranking.
func (d Drink) Embedded() bool {
	return len(d.Embedding) > 0
}

// EmbeddingText is the text the reindexer embeds for this drink.
// Name plus description captures both identity and flavor profile.
func (d Drink) EmbeddingText() string {
	if d.Description == "" {
		return d.Name
	}
	return d.Name + ": " + d.Description
}
