// Package aiassess asks a generative AI provider for a safety opinion on a
// URL and turns its free text into a bounded score.
//
// Each call is a single attempt. Any transport, auth or decode failure yields
// a degraded assessment together with an error wrapping ErrAdapterFailure, so
// callers can continue with the heuristic result alone.
package aiassess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/model"
	"github.com/raysh454/safelink/internal/urlnorm"
	"github.com/raysh454/safelink/internal/webclient"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// DegradedExplanation is shown in place of analysis text when the call fails.
	DegradedExplanation = "Unable to get AI analysis. Please check your API key and try again."

	apiKeyHeader = "x-goog-api-key"
)

// ErrAdapterFailure marks any failed provider call.
var ErrAdapterFailure = errors.New("ai assessment failed")

// ErrNoCredential is returned when Assess is called without an API key.
var ErrNoCredential = errors.New("ai assessment: no credential")

type Config struct {
	Model           string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
}

func DefaultConfig() Config {
	return Config{
		Model:           DefaultModel,
		BaseURL:         DefaultBaseURL,
		Temperature:     0.1,
		MaxOutputTokens: 1024,
	}
}

// Adapter calls the Gemini generateContent endpoint.
type Adapter struct {
	cfg    Config
	client webclient.WebClient
	logger logging.Logger
}

func New(cfg Config, client webclient.WebClient, logger logging.Logger) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("aiassess: nil web client")
	}
	if logger == nil {
		return nil, errors.New("aiassess: nil logger provided")
	}
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	return &Adapter{
		cfg:    cfg,
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "aiassess"}),
	}, nil
}

// Model returns the configured model id.
func (a *Adapter) Model() string { return a.cfg.Model }

// Assess requests an assessment of u. On failure it returns a degraded
// assessment and an error wrapping ErrAdapterFailure.
func (a *Adapter) Assess(ctx context.Context, u *urlnorm.URL, apiKey string) (*model.Assessment, error) {
	if u == nil {
		return nil, errors.New("aiassess: nil url")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoCredential
	}

	text, err := a.generate(ctx, BuildPrompt(u.Canonical), apiKey)
	if err != nil {
		a.logger.Warn("ai assessment degraded",
			logging.Field{Key: "host", Value: u.Host},
			logging.Err(err))
		return a.degraded(), fmt.Errorf("%w: %w", ErrAdapterFailure, err)
	}

	p := ParseResponse(text)
	a.logger.Debug("ai assessment parsed",
		logging.Field{Key: "host", Value: u.Host},
		logging.Field{Key: "score", Value: p.Score},
		logging.Field{Key: "inferred", Value: p.Inferred})

	return &model.Assessment{
		Score:       p.Score,
		Label:       model.SafetyLabel(p.Score),
		Explanation: p.Explanation,
		Inferred:    p.Inferred,
		Model:       a.cfg.Model,
	}, nil
}

func (a *Adapter) degraded() *model.Assessment {
	return &model.Assessment{
		Explanation: DegradedExplanation,
		Model:       a.cfg.Model,
		Degraded:    true,
	}
}

func (a *Adapter) endpoint() string {
	return strings.TrimRight(a.cfg.BaseURL, "/") + "/" + a.cfg.Model + ":generateContent"
}

func (a *Adapter) generate(ctx context.Context, prompt, apiKey string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     a.cfg.Temperature,
			MaxOutputTokens: a.cfg.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := a.client.Do(ctx, &webclient.Request{
		Method: http.MethodPost,
		URL:    a.endpoint(),
		Headers: http.Header{
			"Content-Type": {"application/json"},
			apiKeyHeader:   {apiKey},
		},
		Body: body,
	})
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiErrorResponse
		if json.Unmarshal(resp.Body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("provider status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var gr geminiResponse
	if err := json.Unmarshal(resp.Body, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", gr.PromptFeedback.BlockReason)
	}
	text := gr.text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response text")
	}
	return text, nil
}
