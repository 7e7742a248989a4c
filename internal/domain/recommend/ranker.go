package recommend

import (
	"errors"
	"math"
	"sort"

	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
)

// ErrDimensionMismatch is returned when a catalog embedding and the query
// embedding have different lengths. Cosine similarity is undefined across
// dimensionalities, so this is an error, never silently scored as zero.
var ErrDimensionMismatch = errors.New("query and catalog embedding dimensions differ")

// RankedDrink pairs a drink with its similarity to the query, in [-1, 1].
type RankedDrink struct {
	Drink catalog.Drink
	Score float64
}

// Rank scores the catalog against the query embedding and returns the top
// candidates, best first.
//
//   - Only drinks matching wantAlcohol are considered; an empty filtered set
//     yields an empty result (a "no matching drinks" state, not an error).
//   - Drinks without an embedding are excluded.
//   - Ties keep catalog iteration order (stable sort), so identical scores
//     rank deterministically.
//   - At most topK entries are returned; fewer if the filtered set is smaller.
//
// Pure and synchronous: no I/O, no shared mutable state.
func Rank(query []float64, drinks []catalog.Drink, wantAlcohol bool, topK int) ([]RankedDrink, error) {
	if topK <= 0 {
		return nil, nil
	}

	ranked := make([]RankedDrink, 0, len(drinks))
	for _, d := range drinks {
		if d.HasAlcohol != wantAlcohol || !d.Embedded() {
			continue
		}
		if len(d.Embedding) != len(query) {
			return nil, ErrDimensionMismatch
		}
		ranked = append(ranked, RankedDrink{Drink: d, Score: cosineSimilarity(query, d.Embedding)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// cosineSimilarity computes dot(a,b) / (||a||*||b||) for equal-length vectors.
// Returns 0 if either magnitude is zero — degenerate catalog vectors must
// never produce NaN.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
