package model

// HistoryRecord is one persisted check, used to let a user re-run it.
type HistoryRecord struct {
	// URL is the original input string, not the canonical form.
	URL string `json:"url"`

	Score int `json:"score"`

	// Timestamp is wall-clock milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}
