package aiassess_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raysh454/safelink/internal/aiassess"
	"github.com/raysh454/safelink/internal/testutil"
	"github.com/raysh454/safelink/internal/urlnorm"
	"github.com/raysh454/safelink/internal/webclient"
)

type captured struct {
	path   string
	apiKey string
	prompt string
}

func geminiServer(t *testing.T, status int, body string, got *captured) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got.path = r.URL.Path
			got.apiKey = r.Header.Get("x-goog-api-key")
			var req struct {
				Contents []struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"contents"`
			}
			b, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(b, &req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
				got.prompt = req.Contents[0].Parts[0].Text
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func candidate(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func newAdapter(t *testing.T, ts *httptest.Server) *aiassess.Adapter {
	t.Helper()
	logger := &testutil.DummyLogger{}
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, logger, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	cfg := aiassess.DefaultConfig()
	cfg.BaseURL = ts.URL + "/v1beta/models/"
	a, err := aiassess.New(cfg, client, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func mustURL(t *testing.T, raw string) *urlnorm.URL {
	t.Helper()
	u, err := urlnorm.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize(%q): %v", raw, err)
	}
	return u
}

func TestAdapter_Assess_ParsesScore(t *testing.T) {
	t.Parallel()
	var got captured
	ts := geminiServer(t, http.StatusOK, candidate("Well known site.\nSAFETY_SCORE: 88"), &got)
	a := newAdapter(t, ts)

	res, err := a.Assess(context.Background(), mustURL(t, "github.com/login"), "secret-key")
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if res.Score != 88 || res.Degraded || res.Inferred {
		t.Fatalf("result = %+v", res)
	}
	if res.Label != "Safe" {
		t.Errorf("Label = %q", res.Label)
	}
	if res.Explanation != "Well known site." {
		t.Errorf("Explanation = %q", res.Explanation)
	}
	if res.Model != aiassess.DefaultModel {
		t.Errorf("Model = %q", res.Model)
	}

	if got.path != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", got.path)
	}
	if got.apiKey != "secret-key" {
		t.Errorf("api key header = %q", got.apiKey)
	}
	if !strings.Contains(got.prompt, "URL: https://github.com/login") {
		t.Errorf("prompt missing canonical URL: %q", got.prompt)
	}
}

func TestAdapter_Assess_FallbackWhenTokenMissing(t *testing.T) {
	t.Parallel()
	ts := geminiServer(t, http.StatusOK, candidate("This is a classic phishing lure."), nil)
	a := newAdapter(t, ts)

	res, err := a.Assess(context.Background(), mustURL(t, "paypa1.tk"), "k")
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if !res.Inferred || res.Score != aiassess.FallbackMalicious {
		t.Fatalf("result = %+v", res)
	}
	if res.Label != "Potentially Unsafe" {
		t.Errorf("Label = %q", res.Label)
	}
}

func TestAdapter_Assess_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"bad json", http.StatusOK, `{not json`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := geminiServer(t, tt.status, tt.body, nil)
			a := newAdapter(t, ts)

			res, err := a.Assess(context.Background(), mustURL(t, "example.com"), "k")
			if !errors.Is(err, aiassess.ErrAdapterFailure) {
				t.Fatalf("err = %v, want ErrAdapterFailure", err)
			}
			if res == nil || !res.Degraded || res.Scored() {
				t.Fatalf("result = %+v, want degraded", res)
			}
			if res.Explanation != aiassess.DegradedExplanation {
				t.Errorf("Explanation = %q", res.Explanation)
			}
		})
	}
}

func TestAdapter_Assess_TransportFailure(t *testing.T) {
	t.Parallel()
	ts := geminiServer(t, http.StatusOK, candidate("SAFETY_SCORE: 90"), nil)
	a := newAdapter(t, ts)
	ts.Close()

	res, err := a.Assess(context.Background(), mustURL(t, "example.com"), "k")
	if !errors.Is(err, aiassess.ErrAdapterFailure) || !res.Degraded {
		t.Fatalf("got %+v, %v", res, err)
	}
}

func TestAdapter_Assess_NoCredential(t *testing.T) {
	t.Parallel()
	ts := geminiServer(t, http.StatusOK, candidate("SAFETY_SCORE: 90"), nil)
	a := newAdapter(t, ts)

	if _, err := a.Assess(context.Background(), mustURL(t, "example.com"), "  "); !errors.Is(err, aiassess.ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	if _, err := aiassess.New(aiassess.Config{}, nil, logger); err == nil {
		t.Error("expected error for nil client")
	}
	client, _ := webclient.NewNetHTTPClient(webclient.Config{}, logger, nil)
	a, err := aiassess.New(aiassess.Config{}, client, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Model() != aiassess.DefaultModel {
		t.Errorf("Model = %q", a.Model())
	}
}
