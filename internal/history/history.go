// Package history keeps the most recently checked URLs.
//
// The list is stored as one JSON document under a single KV key and is
// rewritten in full on every change. Records are unique by exact URL string
// and ordered most recent first.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/safelink/internal/kvstore"
	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/model"
)

// Key is the KV key holding the history list.
const Key = "url_history"

// DefaultCapacity is the number of records retained.
const DefaultCapacity = 20

// ErrPersistence wraps any failure to load or save the history list.
var ErrPersistence = errors.New("history persistence failed")

// Store is safe for concurrent use. The in-memory list is authoritative
// once loaded; a failed save leaves it updated so the session stays usable.
type Store struct {
	kv       kvstore.Store
	capacity int
	logger   logging.Logger
	now      func() time.Time

	mu      sync.Mutex
	records []model.HistoryRecord
	loaded  bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store holding at most capacity records. capacity <= 0 means
// DefaultCapacity.
func New(kv kvstore.Store, capacity int, logger logging.Logger, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("history: nil kv store")
	}
	if logger == nil {
		return nil, errors.New("history: nil logger provided")
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Store{
		kv:       kv,
		capacity: capacity,
		logger:   logger.With(logging.Field{Key: "component", Value: "history"}),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Capacity returns the configured maximum list length.
func (s *Store) Capacity() int { return s.capacity }

// Append records url with the given score as the most recent entry. An
// existing record with the same URL is replaced.
func (s *Store) Append(ctx context.Context, url string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	rec := model.HistoryRecord{URL: url, Score: score, Timestamp: s.now().UnixMilli()}
	next := make([]model.HistoryRecord, 0, s.capacity)
	next = append(next, rec)
	for _, r := range s.records {
		if r.URL == url {
			continue
		}
		if len(next) == s.capacity {
			break
		}
		next = append(next, r)
	}
	s.records = next
	return s.saveLocked(ctx)
}

// List returns a copy of the records, most recent first.
func (s *Store) List(ctx context.Context) ([]model.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return []model.HistoryRecord{}, err
	}
	out := make([]model.HistoryRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Clear empties the list and persists the empty list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.loaded = true
	if err := s.saveLocked(ctx); err != nil {
		return err
	}
	s.logger.Info("history cleared")
	return nil
}

func (s *Store) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return fmt.Errorf("%w: load: %w", ErrPersistence, err)
	}
	s.loaded = true
	if !ok || raw == "" {
		return nil
	}

	var records []model.HistoryRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// A corrupt document is dropped and overwritten on the next save.
		s.logger.Warn("discarding unreadable history", logging.Err(err))
		return nil
	}
	if len(records) > s.capacity {
		records = records[:s.capacity]
	}
	s.records = records
	return nil
}

func (s *Store) saveLocked(ctx context.Context) error {
	records := s.records
	if records == nil {
		records = []model.HistoryRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		s.logger.Warn("failed to persist history", logging.Err(err))
		return fmt.Errorf("%w: save: %w", ErrPersistence, err)
	}
	return nil
}
