// Package credential stores the AI provider API key.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raysh454/safelink/internal/kvstore"
	"github.com/raysh454/safelink/internal/logging"
)

// Key is the KV key holding the API key.
const Key = "api_key"

// Store reads and writes the single API key.
type Store struct {
	kv     kvstore.Store
	logger logging.Logger
}

func New(kv kvstore.Store, logger logging.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("credential: nil kv store")
	}
	if logger == nil {
		return nil, errors.New("credential: nil logger provided")
	}
	return &Store{
		kv:     kv,
		logger: logger.With(logging.Field{Key: "component", Value: "credential"}),
	}, nil
}

// Get returns the stored key. ok is false when no key is set; a stored
// blank value also counts as absent.
func (s *Store) Get(ctx context.Context) (key string, ok bool, err error) {
	v, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return "", false, fmt.Errorf("read credential: %w", err)
	}
	if !ok || strings.TrimSpace(v) == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Set stores key after trimming whitespace. A blank key clears the credential.
func (s *Store) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.Clear(ctx)
	}
	if err := s.kv.Set(ctx, Key, key); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	s.logger.Info("api key updated")
	return nil
}

// Clear removes the stored key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	s.logger.Info("api key cleared")
	return nil
}
