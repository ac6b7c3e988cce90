package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/safelink/internal/logging"
	"go.etcd.io/bbolt"
)

// BoltFileName is the database file created under Config.Dir.
const BoltFileName = "safelink.bolt"

var bucketKV = []byte("kv")

// BoltStore keeps values in a single bbolt bucket. bbolt is pure Go and
// needs no server, which suits a single-user tool.
type BoltStore struct {
	db     *bbolt.DB
	logger logging.Logger
}

// OpenBolt opens (creating if needed) dir/safelink.bolt.
func OpenBolt(dir string, logger logging.Logger) (*BoltStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("bolt store: dir is required")
	}
	if logger == nil {
		return nil, errors.New("bolt store: nil logger provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir %s: %w", dir, err)
	}

	opts := &bbolt.Options{
		Timeout: 1 * time.Second,
	}
	db, err := bbolt.Open(filepath.Join(dir, BoltFileName), 0o600, opts)
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	l := logger.With(logging.Field{Key: "component", Value: "kvstore-bolt"})
	l.Info("bolt kv store initialized", logging.Field{Key: "path", Value: db.Path()})
	return &BoltStore{db: db, logger: l}, nil
}

func (s *BoltStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		// Seek distinguishes a stored empty value from a missing key.
		k, v := tx.Bucket(bucketKV).Cursor().Seek([]byte(key))
		if k != nil && bytes.Equal(k, []byte(key)) {
			value, ok = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, s.wrap("get", key, err)
	}
	return value, ok, nil
}

func (s *BoltStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), []byte(value))
	})
	return s.wrap("put", key, err)
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Delete([]byte(key))
	})
	return s.wrap("delete", key, err)
}

func (s *BoltStore) Close() error {
	s.logger.Info("closing bolt kv store")
	return s.db.Close()
}

func (s *BoltStore) wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}
