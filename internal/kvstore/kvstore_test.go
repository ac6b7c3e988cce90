package kvstore_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/raysh454/safelink/internal/kvstore"
	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/testutil"
)

func openBackends(t *testing.T) map[string]kvstore.Store {
	t.Helper()
	logger := &testutil.DummyLogger{}

	sqliteStore, err := kvstore.OpenSQLite(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	boltStore, err := kvstore.OpenBolt(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}

	stores := map[string]kvstore.Store{
		"sqlite": sqliteStore,
		"bolt":   boltStore,
		"memory": kvstore.NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_Contract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(ctx, "api_key"); err != nil || ok {
				t.Fatalf("Get missing = ok %v err %v, want not ok", ok, err)
			}

			if err := s.Set(ctx, "api_key", "first"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, "api_key", "second"); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			v, ok, err := s.Get(ctx, "api_key")
			if err != nil || !ok || v != "second" {
				t.Fatalf("Get = %q, %v, %v; want second", v, ok, err)
			}

			if err := s.Set(ctx, "empty", ""); err != nil {
				t.Fatalf("Set empty: %v", err)
			}
			v, ok, err = s.Get(ctx, "empty")
			if err != nil || !ok || v != "" {
				t.Fatalf("Get empty = %q, %v, %v; want present empty", v, ok, err)
			}

			if err := s.Delete(ctx, "api_key"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := s.Get(ctx, "api_key"); ok {
				t.Fatal("key still present after Delete")
			}
			if err := s.Delete(ctx, "never-set"); err != nil {
				t.Fatalf("Delete missing key: %v", err)
			}
		})
	}
}

func TestStore_ClosedReturnsErrClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if _, _, err := s.Get(ctx, "k"); !errors.Is(err, kvstore.ErrClosed) {
				t.Errorf("Get after close err = %v, want ErrClosed", err)
			}
			if err := s.Set(ctx, "k", "v"); !errors.Is(err, kvstore.ErrClosed) {
				t.Errorf("Set after close err = %v, want ErrClosed", err)
			}
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	logger := &testutil.DummyLogger{}

	s, err := kvstore.OpenSQLite(dir, logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Set(ctx, "url_history", `[{"url":"https://a.example"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = kvstore.OpenSQLite(dir, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get(ctx, "url_history")
	if err != nil || !ok || v != `[{"url":"https://a.example"}]` {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	logger := &testutil.DummyLogger{}

	s, err := kvstore.OpenBolt(dir, logger)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	if err := s.Set(ctx, "api_key", "secret"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = kvstore.OpenBolt(dir, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if v, ok, _ := s.Get(ctx, "api_key"); !ok || v != "secret" {
		t.Fatalf("Get after reopen = %q, %v", v, ok)
	}
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	t.Parallel()
	db, err := sql.Open("sqlite", "file:kvstore_inmem?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	s, err := kvstore.NewSQLiteStore(db, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	ctx := context.Background()
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// The caller still owns db.
	if err := db.Ping(); err != nil {
		t.Fatalf("db closed by store: %v", err)
	}
}

func TestNewSQLiteStore_Validation(t *testing.T) {
	t.Parallel()
	if _, err := kvstore.NewSQLiteStore(nil, &testutil.DummyLogger{}); err == nil {
		t.Error("expected error for nil db")
	}
	if _, err := kvstore.OpenBolt(t.TempDir(), nil); err == nil {
		t.Error("expected error for nil logger")
	}
	if _, err := kvstore.OpenSQLite("", &testutil.DummyLogger{}); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestOpen_Factory(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}

	for _, backend := range []string{"", "SQLite", "bolt", "memory"} {
		s, err := kvstore.Open(kvstore.Config{Backend: backend, Dir: t.TempDir()}, logger)
		if err != nil {
			t.Fatalf("Open(%q): %v", backend, err)
		}
		_ = s.Close()
	}

	if _, err := kvstore.Open(kvstore.Config{Backend: "redis"}, logger); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestRegisterBackend(t *testing.T) {
	t.Parallel()
	fake := kvstore.NewMemoryStore()
	kvstore.RegisterBackend("Test-Fake", func(kvstore.Config, logging.Logger) (kvstore.Store, error) {
		return fake, nil
	})

	s, err := kvstore.Open(kvstore.Config{Backend: "test-fake"}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s != kvstore.Store(fake) {
		t.Fatal("Open did not use the registered constructor")
	}

	found := false
	for _, name := range kvstore.ListBackends() {
		if name == "test-fake" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ListBackends() = %v, missing test-fake", kvstore.ListBackends())
	}
}
