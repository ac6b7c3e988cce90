package server

import "github.com/raysh454/safelink/internal/model"

// CheckRequest is the body of POST /checks and of each WebSocket message.
type CheckRequest struct {
	URL string `json:"url"`
}

// CheckResponse is a completed check. HistoryWarning is set when the result
// could not be saved to history.
type CheckResponse struct {
	*model.FinalResult
	HistoryWarning string `json:"history_warning,omitempty"`
}

// CredentialRequest is the body of PUT /credential.
type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

// CredentialStatus reports whether an API key is stored. The key itself is
// never returned.
type CredentialStatus struct {
	Set bool `json:"set"`
}

// ThresholdsResponse exposes the score bands used for labels.
type ThresholdsResponse struct {
	Safe    int `json:"safe"`
	Caution int `json:"caution"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
