package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raysh454/safelink/internal/aiassess"
	"github.com/raysh454/safelink/internal/history"
	"github.com/raysh454/safelink/internal/kvstore"
	"github.com/raysh454/safelink/internal/urlnorm"
)

// Config contains the runtime configuration shared by the CLI and the server.
type Config struct {
	// Store selects the persistence backend and its data directory.
	Store kvstore.Config

	// ListenAddr is the address the HTTP API binds to.
	ListenAddr string

	// AllowedOrigin is the browser origin allowed to call the HTTP API.
	// Empty restricts it to same-origin and non-browser clients.
	AllowedOrigin string

	// AI provider settings.
	AI        aiassess.Config
	AITimeout time.Duration

	// APIKey, when non-empty, is written to the credential store at startup
	// if no credential is stored yet.
	APIKey string

	HistoryCapacity int
	MaxURLLength    int

	// RulesFile optionally replaces the built-in scoring lists.
	RulesFile string

	LogLevel string
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: kvstore.Config{
			Backend: kvstore.BackendSQLite,
			Dir:     "~/.config/safelink",
		},
		ListenAddr:      "127.0.0.1:8080",
		AI:              aiassess.DefaultConfig(),
		AITimeout:       30 * time.Second,
		HistoryCapacity: history.DefaultCapacity,
		MaxURLLength:    urlnorm.DefaultMaxLength,
		LogLevel:        "info",
	}
}

// LoadFromEnv overlays environment variables on DefaultConfig. getenv is
// usually os.Getenv; empty values leave the default in place.
func LoadFromEnv(getenv func(string) string) *Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := DefaultConfig()
	env := envReader(getenv)

	cfg.Store.Backend = env.str("SAFELINK_STORE", cfg.Store.Backend)
	cfg.Store.Dir = env.str("SAFELINK_DATA_DIR", cfg.Store.Dir)
	cfg.ListenAddr = env.str("SAFELINK_LISTEN_ADDR", cfg.ListenAddr)
	cfg.AllowedOrigin = env.str("SAFELINK_ALLOWED_ORIGIN", cfg.AllowedOrigin)
	cfg.APIKey = env.str("GEMINI_API_KEY", "")
	cfg.AI.Model = env.str("AI_MODEL_NAME", cfg.AI.Model)
	cfg.AI.BaseURL = env.str("AI_BASE_URL", cfg.AI.BaseURL)
	cfg.AITimeout = time.Duration(env.int("AI_TIMEOUT_SECONDS", int(cfg.AITimeout/time.Second))) * time.Second
	cfg.HistoryCapacity = env.int("HISTORY_CAPACITY", cfg.HistoryCapacity)
	cfg.MaxURLLength = env.int("MAX_URL_LENGTH", cfg.MaxURLLength)
	cfg.RulesFile = env.str("SAFELINK_RULES_FILE", cfg.RulesFile)
	cfg.LogLevel = env.str("LOG_LEVEL", cfg.LogLevel)
	return cfg
}

type envReader func(string) string

func (e envReader) str(key, def string) string {
	if v := strings.TrimSpace(e(key)); v != "" {
		return v
	}
	return def
}

// int ignores unparsable and non-positive values.
func (e envReader) int(key string, def int) int {
	v := strings.TrimSpace(e(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// expandHome resolves a leading "~" against the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
