package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/safelink/internal/aiassess"
	"github.com/raysh454/safelink/internal/history"
	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/metrics"
	"github.com/raysh454/safelink/internal/model"
	"github.com/raysh454/safelink/internal/scoring"
	"github.com/raysh454/safelink/internal/urlnorm"
)

// ErrCheckInProgress is returned when Check is called while another check
// has not finished.
var ErrCheckInProgress = errors.New("a check is already in progress")

// Assessor is the AI assessment capability used by the checker.
type Assessor interface {
	Assess(ctx context.Context, u *urlnorm.URL, apiKey string) (*model.Assessment, error)
}

// CredentialSource supplies the AI API key.
type CredentialSource interface {
	Get(ctx context.Context) (key string, ok bool, err error)
}

type CheckEventType string

const (
	CheckEventHeuristic CheckEventType = "heuristic"
	CheckEventResult    CheckEventType = "result"
	CheckEventError     CheckEventType = "error"
)

// CheckEvent reports progress of a single check to an Observer.
type CheckEvent struct {
	Type CheckEventType `json:"type"`

	URL       string             `json:"url,omitempty"`
	Heuristic *model.ScoreReport `json:"heuristic,omitempty"`
	Result    *model.FinalResult `json:"result,omitempty"`

	// Warning carries a non-fatal problem, such as a failed history write.
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// Observer receives check events synchronously on the checking goroutine.
type Observer func(CheckEvent)

// CheckerDeps are the collaborators of a Checker. Assessor and Credentials
// may be nil, in which case AI assessment is skipped.
type CheckerDeps struct {
	Scorer      *scoring.Scorer
	History     *history.Store
	Assessor    Assessor
	Credentials CredentialSource
	Metrics     *metrics.Metrics
	Logger      logging.Logger

	// MaxURLLength bounds input length; zero means urlnorm.DefaultMaxLength.
	MaxURLLength int

	// Now overrides the clock used for CheckedAt.
	Now func() time.Time
}

// Checker runs one URL check at a time: normalize, score heuristically while
// the AI call is in flight, blend, and record history.
type Checker struct {
	deps   CheckerDeps
	opts   urlnorm.Options
	sem    chan struct{}
	logger logging.Logger
}

func NewChecker(deps CheckerDeps) (*Checker, error) {
	if deps.Scorer == nil {
		return nil, errors.New("checker: nil scorer")
	}
	if deps.History == nil {
		return nil, errors.New("checker: nil history store")
	}
	if deps.Logger == nil {
		return nil, errors.New("checker: nil logger provided")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Checker{
		deps:   deps,
		opts:   urlnorm.Options{MaxLength: deps.MaxURLLength},
		sem:    make(chan struct{}, 1),
		logger: deps.Logger.With(logging.Field{Key: "component", Value: "checker"}),
	}, nil
}

// Check scores raw. Validation errors from urlnorm and ErrCheckInProgress
// return a nil result. A history persistence failure returns the complete
// result together with an error wrapping history.ErrPersistence.
func (c *Checker) Check(ctx context.Context, raw string) (*model.FinalResult, error) {
	return c.CheckObserved(ctx, raw, nil)
}

// CheckObserved is Check with progress events delivered to obs.
func (c *Checker) CheckObserved(ctx context.Context, raw string, obs Observer) (*model.FinalResult, error) {
	if obs == nil {
		obs = func(CheckEvent) {}
	}

	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	default:
		c.deps.Metrics.ObserveCheck(metrics.OutcomeBusy)
		obs(CheckEvent{Type: CheckEventError, Error: ErrCheckInProgress.Error(), Kind: "busy"})
		return nil, ErrCheckInProgress
	}

	u, err := urlnorm.NormalizeWithOptions(raw, c.opts)
	if err != nil {
		c.deps.Metrics.ObserveCheck(metrics.OutcomeInvalidInput)
		obs(CheckEvent{Type: CheckEventError, Error: err.Error(), Kind: ValidationKind(err)})
		return nil, err
	}

	apiKey, haveKey := c.credential(ctx)

	var (
		ai    *model.Assessment
		aiErr error
		g     errgroup.Group
	)
	if haveKey {
		g.Go(func() error {
			ai, aiErr = c.deps.Assessor.Assess(ctx, u, apiKey)
			return nil
		})
	}

	report := c.deps.Scorer.Score(u)
	obs(CheckEvent{Type: CheckEventHeuristic, URL: u.Canonical, Heuristic: &report})

	_ = g.Wait()
	ai = c.settleAssessment(haveKey, ai, aiErr, u)

	blended := scoring.Blend(report, ai, report.KnownDomain)
	result := &model.FinalResult{
		ID:           uuid.NewString(),
		Input:        raw,
		URL:          u.Canonical,
		Host:         u.Host,
		ScoreReport:  report,
		AI:           ai,
		BlendedScore: blended,
		FinalScore:   blended,
		Label:        model.SafetyLabel(blended),
		CheckedAt:    c.deps.Now().UTC(),
	}

	c.deps.Metrics.ObserveCheck(metrics.OutcomeOK)
	c.deps.Metrics.ObserveScore(result.FinalScore)
	c.logger.Info("check completed",
		logging.Field{Key: "check_id", Value: result.ID},
		logging.Field{Key: "host", Value: result.Host},
		logging.Field{Key: "heuristic", Value: report.Score},
		logging.Field{Key: "final", Value: result.FinalScore},
		logging.Field{Key: "rules", Value: strings.Join(report.MatchedRules, ",")})

	if err := c.deps.History.Append(ctx, raw, result.FinalScore); err != nil {
		c.deps.Metrics.HistoryFailure()
		c.logger.Warn("history append failed", logging.Err(err))
		obs(CheckEvent{Type: CheckEventResult, URL: result.URL, Result: result, Warning: err.Error()})
		return result, err
	}

	obs(CheckEvent{Type: CheckEventResult, URL: result.URL, Result: result})
	return result, nil
}

// credential reports the API key to use, if any. A read failure is logged
// and treated as no credential.
func (c *Checker) credential(ctx context.Context) (string, bool) {
	if c.deps.Assessor == nil || c.deps.Credentials == nil {
		return "", false
	}
	key, ok, err := c.deps.Credentials.Get(ctx)
	if err != nil {
		c.logger.Warn("credential lookup failed, skipping ai assessment", logging.Err(err))
		return "", false
	}
	return key, ok
}

func (c *Checker) settleAssessment(attempted bool, ai *model.Assessment, aiErr error, u *urlnorm.URL) *model.Assessment {
	switch {
	case !attempted:
		c.deps.Metrics.ObserveAI(metrics.AISkipped)
		return nil
	case aiErr != nil:
		c.deps.Metrics.ObserveAI(metrics.AIDegraded)
		c.logger.Warn("ai assessment unavailable",
			logging.Field{Key: "host", Value: u.Host},
			logging.Err(aiErr))
		if ai == nil || !ai.Degraded {
			ai = &model.Assessment{Explanation: aiassess.DegradedExplanation, Degraded: true}
		}
		return ai
	case ai == nil:
		c.deps.Metrics.ObserveAI(metrics.AISkipped)
		return nil
	case ai.Inferred:
		c.deps.Metrics.ObserveAI(metrics.AIInferred)
	default:
		c.deps.Metrics.ObserveAI(metrics.AIScored)
	}
	return ai
}

// ValidationKind names a normalization error for API and CLI responses. It
// returns "" for other errors.
func ValidationKind(err error) string {
	switch {
	case errors.Is(err, urlnorm.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, urlnorm.ErrInvalidURL):
		return "invalid_url"
	default:
		return ""
	}
}
