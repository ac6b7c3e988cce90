package model

import "encoding/json"

// Assessment is the parsed result of one AI provider call.
type Assessment struct {
	// Score is the provider's confidence that the URL is safe [0 .. 100].
	// Meaningless when Degraded is true, and omitted from JSON then.
	Score int `json:"score"`

	// Label is SafetyLabel(Score), empty when Degraded.
	Label string `json:"label,omitempty"`

	// Explanation is the provider's free text with the score token removed,
	// or a fixed message when Degraded.
	Explanation string `json:"explanation"`

	// Inferred is true when the response carried no score token and Score
	// was inferred from keywords in the text.
	Inferred bool `json:"inferred,omitempty"`

	// Model identifies the provider model that produced the text.
	Model string `json:"model,omitempty"`

	// Degraded marks a failed call: there is no numeric score.
	Degraded bool `json:"degraded,omitempty"`
}

// Scored reports whether a carries a usable numeric score.
func (a *Assessment) Scored() bool {
	return a != nil && !a.Degraded
}

// MarshalJSON drops "score" from degraded assessments.
func (a Assessment) MarshalJSON() ([]byte, error) {
	type plain Assessment
	out := struct {
		plain
		Score *int `json:"score,omitempty"`
	}{plain: plain(a)}
	if !a.Degraded {
		out.Score = &a.Score
	}
	return json.Marshal(out)
}
