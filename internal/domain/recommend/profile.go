// Package recommend implements the drink recommendation pipeline: preference
// profiles, cosine-similarity ranking over the catalog, prompt construction,
// tolerant parsing of the LLM reply, and the session orchestrator that ties
// the steps together.
package recommend

import "strings"

// Answer values for the alcohol question. The alcohol dimension is the only
// one that acts as a hard catalog filter; everything else only shapes the
// prompts.
const (
	AnswerWithAlcohol = "With alcohol"
	AnswerAlcoholFree = "Alcohol-free"
)

// PreferenceProfile holds one session's answers, one field per preference
// dimension. Fields are free text; the kiosk UI fills them from Questions.
type PreferenceProfile struct {
	Mood        string `json:"mood"`
	Flavor      string `json:"flavor"`
	Style       string `json:"style"`
	Temperature string `json:"temperature"`
	Experience  string `json:"experience"`
	Dietary     string `json:"dietary"`
	Base        string `json:"base"`
	Alcohol     string `json:"alcohol"`
}

// Complete reports whether every required dimension is answered.
// Temperature, dietary and base are optional flourishes; the rest gate the
// recommendation request.
func (p PreferenceProfile) Complete() bool {
	required := []string{p.Mood, p.Flavor, p.Style, p.Experience, p.Alcohol}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// WantsAlcohol interprets the alcohol dimension as the catalog filter value.
func (p PreferenceProfile) WantsAlcohol() bool {
	return strings.EqualFold(strings.TrimSpace(p.Alcohol), AnswerWithAlcohol)
}

// Question is one kiosk questionnaire entry: a label, its answer options, and
// an explicit setter into the profile. The tagged setter list replaces any
// reflective field lookup — adding a dimension means adding a Question here
// and a field on PreferenceProfile, nothing else.
type Question struct {
	Label    string
	Options  []string
	Required bool
	Set      func(*PreferenceProfile, string)
}

// Questions returns the questionnaire in display order.
func Questions() []Question {
	return []Question{
		{
			Label:    "How are you feeling today?",
			Options:  []string{"Upbeat", "Relaxed"},
			Required: true,
			Set:      func(p *PreferenceProfile, v string) { p.Mood = v },
		},
		{
			Label:    "Do you prefer flavors that are:",
			Options:  []string{"Sweet", "Bitter or sour"},
			Required: true,
			Set:      func(p *PreferenceProfile, v string) { p.Flavor = v },
		},
		{
			Label:    "What style of drink?",
			Options:  []string{"Classic", "Adventurous"},
			Required: true,
			Set:      func(p *PreferenceProfile, v string) { p.Style = v },
		},
		{
			Label:    "How should it be served?",
			Options:  []string{"Ice cold", "Chilled"},
			Required: false,
			Set:      func(p *PreferenceProfile, v string) { p.Temperature = v },
		},
		{
			Label:    "What kind of experience?",
			Options:  []string{"Something to sip slowly", "Something refreshing"},
			Required: true,
			Set:      func(p *PreferenceProfile, v string) { p.Experience = v },
		},
		{
			Label:    "Any dietary restriction?",
			Options:  []string{"None", "No dairy", "Low sugar"},
			Required: false,
			Set:      func(p *PreferenceProfile, v string) { p.Dietary = v },
		},
		{
			Label:    "Preferred base?",
			Options:  []string{"No preference", "Rum", "Gin", "Whiskey"},
			Required: false,
			Set:      func(p *PreferenceProfile, v string) { p.Base = v },
		},
		{
			Label:    "Do you prefer drinks:",
			Options:  []string{AnswerWithAlcohol, AnswerAlcoholFree},
			Required: true,
			Set:      func(p *PreferenceProfile, v string) { p.Alcohol = v },
		},
	}
}
