package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/safelink/internal/aiassess"
	"github.com/raysh454/safelink/internal/credential"
	"github.com/raysh454/safelink/internal/history"
	"github.com/raysh454/safelink/internal/kvstore"
	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/metrics"
	"github.com/raysh454/safelink/internal/scoring"
	"github.com/raysh454/safelink/internal/webclient"
)

// Application is the runtime state container shared by the CLI commands and
// the HTTP server. Pass it to modules that need the wired services rather
// than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	Store       kvstore.Store
	Credentials *credential.Store
	History     *history.Store
	Scorer      *scoring.Scorer
	Checker     *Checker
	Metrics     *metrics.Metrics

	client *webclient.NetHTTPClient
}

// NewApplication opens the configured store and wires every service.
func NewApplication(ctx context.Context, cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("application: nil logger provided")
	}

	rules := scoring.DefaultRuleSet()
	if cfg.RulesFile != "" {
		loaded, err := scoring.LoadRuleSet(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		rules = loaded
		logger.Info("loaded scoring rules", logging.Field{Key: "path", Value: cfg.RulesFile})
	}
	scorer, err := scoring.NewScorer(rules, logger)
	if err != nil {
		return nil, err
	}

	storeCfg := cfg.Store
	storeCfg.Dir = expandHome(storeCfg.Dir)
	store, err := kvstore.Open(storeCfg, logger)
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Scorer:  scorer,
		Metrics: metrics.New(),
	}
	if err := a.wire(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// seedCredential stores key only when no credential is stored yet, so a key
// managed through set-key or the API survives restarts.
func seedCredential(ctx context.Context, creds *credential.Store, key string) error {
	_, ok, err := creds.Get(ctx)
	if err != nil || ok {
		return err
	}
	return creds.Set(ctx, key)
}

func (a *Application) wire(ctx context.Context) error {
	cfg := a.Config

	creds, err := credential.New(a.Store, a.Logger)
	if err != nil {
		return err
	}
	if cfg.APIKey != "" {
		if err := seedCredential(ctx, creds, cfg.APIKey); err != nil {
			return fmt.Errorf("seed api key: %w", err)
		}
	}

	hist, err := history.New(a.Store, cfg.HistoryCapacity, a.Logger)
	if err != nil {
		return err
	}

	client, err := webclient.NewNetHTTPClient(webclient.Config{Timeout: cfg.AITimeout}, a.Logger, nil)
	if err != nil {
		return err
	}
	adapter, err := aiassess.New(cfg.AI, client, a.Logger)
	if err != nil {
		return err
	}

	checker, err := NewChecker(CheckerDeps{
		Scorer:       a.Scorer,
		History:      hist,
		Assessor:     adapter,
		Credentials:  creds,
		Metrics:      a.Metrics,
		Logger:       a.Logger,
		MaxURLLength: cfg.MaxURLLength,
	})
	if err != nil {
		return err
	}

	a.Credentials = creds
	a.History = hist
	a.Checker = checker
	a.client = client
	return nil
}

// Close releases the store and idle connections.
func (a *Application) Close() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutting down")
	if a.client != nil {
		_ = a.client.Close()
	}
	return a.Store.Close()
}
