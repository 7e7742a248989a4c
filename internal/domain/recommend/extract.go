package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
)

var (
	// ErrNoJSON is returned when no JSON object can be located in the LLM reply.
	ErrNoJSON = errors.New("no JSON object found in response text")

	// ErrDecode is returned when the extracted text is not valid JSON or does
	// not match the recommendation schema. Terminal for the request — there is
	// no partial recovery from a malformed payload.
	ErrDecode = errors.New("response JSON does not match the recommendation schema")
)

// Recommendation is one reconciled (drink, explanation) pair, in the order
// the LLM ranked it.
type Recommendation struct {
	Drink       catalog.Drink `json:"drink"`
	Explanation string        `json:"explanation"`
}

// parsedRecommendation mirrors one entry of the LLM's JSON payload.
type parsedRecommendation struct {
	DrinkName   string `json:"drink_name"`
	Explanation string `json:"explanation"`
}

// ExtractJSON locates the JSON object inside a free-form LLM reply.
// Models asked for bare JSON still wrap it in code fences or prose often
// enough that extraction has to be tolerant:
//
//  1. If fence markers are present, take the first fenced segment that (after
//     trimming an optional "json" language tag and whitespace) starts with "{"
//     and ends with "}".
//  2. Otherwise take the substring from the first "{" to the last "}".
//  3. If neither yields a candidate, fail with ErrNoJSON.
func ExtractJSON(raw string) (string, error) {
	if strings.Contains(raw, "```") {
		for _, segment := range strings.Split(raw, "```") {
			candidate := strings.TrimSpace(segment)
			candidate = strings.TrimSpace(strings.TrimPrefix(candidate, "json"))
			if strings.HasPrefix(candidate, "{") && strings.HasSuffix(candidate, "}") {
				return candidate, nil
			}
		}
	}

	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return strings.TrimSpace(raw[start : end+1]), nil
}

// ParseRecommendations decodes extracted JSON into the expected
// {"recommendations":[{drink_name, explanation}]} shape. Strict: a missing or
// malformed recommendations array is ErrDecode, never an empty success.
func ParseRecommendations(jsonText string) ([]parsedRecommendation, error) {
	var payload struct {
		Recommendations []parsedRecommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if payload.Recommendations == nil {
		return nil, fmt.Errorf("%w: missing recommendations array", ErrDecode)
	}
	return payload.Recommendations, nil
}

// Reconcile maps LLM-named drinks back to catalog identities. The match is
// case-insensitive and whitespace-trimmed, against exactly the candidate set
// that was offered to the LLM — reconciling against the full catalog could
// reintroduce drinks the alcohol filter excluded. Names that match nothing
// are dropped with a diagnostic; the LLM's ranking order is authoritative and
// is preserved as-is.
func Reconcile(parsed []parsedRecommendation, candidates []catalog.Drink) []Recommendation {
	byName := make(map[string]catalog.Drink, len(candidates))
	for _, d := range candidates {
		byName[normalizeName(d.Name)] = d
	}

	out := make([]Recommendation, 0, len(parsed))
	for _, p := range parsed {
		drink, ok := byName[normalizeName(p.DrinkName)]
		if !ok {
			log.Printf("recommend: dropping unknown drink %q from LLM response", p.DrinkName)
			continue
		}
		out = append(out, Recommendation{Drink: drink, Explanation: strings.TrimSpace(p.Explanation)})
	}
	return out
}

// ExtractRecommendations runs extraction, parsing and reconciliation in one
// step. The returned slice may be empty when every name failed to reconcile;
// that is the caller's "no drinks matched" state, not an error here.
func ExtractRecommendations(raw string, candidates []catalog.Drink) ([]Recommendation, error) {
	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseRecommendations(jsonText)
	if err != nil {
		log.Printf("recommend: undecodable LLM payload: %q", raw)
		return nil, err
	}
	return Reconcile(parsed, candidates), nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
