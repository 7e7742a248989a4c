package recommend

import (
	"fmt"
	"strings"
)

// SystemPreamble is the role-setting system message sent with every ranking request.
const SystemPreamble = "You are a drink specialist who recommends beverages based on the user's stated preferences."

// PreferenceText renders the profile as one natural-language paragraph, in a
// fixed dimension order. Empty dimensions interpolate as empty strings rather
// than being omitted — the paragraph shape is stable regardless of which
// optional answers were given, which keeps the embedding input format
// deterministic.
func PreferenceText(p PreferenceProfile) string {
	return fmt.Sprintf(
		"My mood today is %s. I prefer %s flavors, in a %s style. I want it served %s. "+
			"I am open to a %s experience. Dietary restriction: %s. Preferred base: %s. I prefer drinks %s.",
		p.Mood, p.Flavor, p.Style, p.Temperature, p.Experience, p.Dietary, p.Base, strings.ToLower(p.Alcohol),
	)
}

// RankingPrompt builds the user message for the LLM ranking step.
// candidateNames must be in the order the ranker produced them; the list is
// comma-joined verbatim so the prompt is deterministic for identical inputs.
func RankingPrompt(p PreferenceProfile, candidateNames []string) string {
	b := strings.Builder{}
	b.WriteString("Based on these preferences:\n")
	b.WriteString(PreferenceText(p))
	b.WriteString("\n\nCandidate drinks: ")
	b.WriteString(strings.Join(candidateNames, ", "))
	b.WriteString("\n\nRank every candidate from best to worst fit for these preferences")
	b.WriteString(" and give a short explanation (25 words or fewer) for each.")
	b.WriteString("\nRespond ONLY with a JSON object in this exact format:")
	b.WriteString(` {"recommendations":[{"drink_name":"...","explanation":"..."}]}`)
	b.WriteString("\nDo not wrap the JSON in code fences and do not add any other text.")
	return b.String()
}
