package model

import "time"

// FinalResult is the outcome of one completed check. It is created once and
// never mutated afterwards; the history store only copies URL, score and
// timestamp out of it.
type FinalResult struct {
	ID string `json:"id"`

	// Input is the original, un-normalized user input.
	Input string `json:"input"`

	// URL is the canonical form that was scored.
	URL  string `json:"url"`
	Host string `json:"host"`

	ScoreReport

	// AI is nil when no credential was configured.
	AI *Assessment `json:"ai,omitempty"`

	// BlendedScore combines the heuristic and AI scores. It equals
	// ScoreReport.Score when AI is nil or degraded.
	BlendedScore int `json:"blended_score"`

	// FinalScore is the score presented to the user and recorded in history.
	FinalScore int    `json:"final_score"`
	Label      string `json:"label"`

	CheckedAt time.Time `json:"checked_at"`
}
