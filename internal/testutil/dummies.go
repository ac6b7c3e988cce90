// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/raysh454/safelink/internal/kvstore"
	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/model"
	"github.com/raysh454/safelink/internal/urlnorm"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Assessor ──────────────────────────────────────────────────────────

// DummyAssessor implements app.Assessor.
// By default it returns a scored assessment with Score.
// Set Err to return a degraded assessment alongside that error.
// Set Release to block each call until the channel is closed or receives.
type DummyAssessor struct {
	Score   int
	Err     error
	Delay   time.Duration
	Started chan struct{}
	Release chan struct{}

	mu    sync.Mutex
	Calls []string
	Keys  []string
}

func (d *DummyAssessor) Assess(ctx context.Context, u *urlnorm.URL, apiKey string) (*model.Assessment, error) {
	d.mu.Lock()
	d.Calls = append(d.Calls, u.Canonical)
	d.Keys = append(d.Keys, apiKey)
	d.mu.Unlock()

	if d.Started != nil {
		d.Started <- struct{}{}
	}
	if d.Release != nil {
		select {
		case <-d.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.Err != nil {
		return &model.Assessment{
			Explanation: "dummy failure",
			Degraded:    true,
		}, d.Err
	}
	return &model.Assessment{
		Score:       d.Score,
		Label:       model.SafetyLabel(d.Score),
		Explanation: "dummy analysis",
		Model:       "dummy",
	}, nil
}

// CallCount returns how many times Assess was invoked.
func (d *DummyAssessor) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

// ─── KV store ──────────────────────────────────────────────────────────

// ErrDummyStore is returned by FailingStore.
var ErrDummyStore = errors.New("dummy store failure")

// FailingStore wraps a kvstore.Store and fails writes (and optionally reads)
// with ErrDummyStore.
type FailingStore struct {
	kvstore.Store
	FailReads  bool
	FailWrites bool
}

// NewFailingStore returns a write-failing store backed by memory.
func NewFailingStore() *FailingStore {
	return &FailingStore{Store: kvstore.NewMemoryStore(), FailWrites: true}
}

func (f *FailingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.FailReads {
		return "", false, ErrDummyStore
	}
	return f.Store.Get(ctx, key)
}

func (f *FailingStore) Set(ctx context.Context, key, value string) error {
	if f.FailWrites {
		return ErrDummyStore
	}
	return f.Store.Set(ctx, key, value)
}

func (f *FailingStore) Delete(ctx context.Context, key string) error {
	if f.FailWrites {
		return ErrDummyStore
	}
	return f.Store.Delete(ctx, key)
}
