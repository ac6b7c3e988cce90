package kvstore

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raysh454/safelink/internal/logging"
)

// BackendConstructor opens a Store for the given config.
type BackendConstructor func(cfg Config, logger logging.Logger) (Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{
		BackendSQLite: func(cfg Config, logger logging.Logger) (Store, error) {
			return OpenSQLite(cfg.Dir, logger)
		},
		BackendBolt: func(cfg Config, logger logging.Logger) (Store, error) {
			return OpenBolt(cfg.Dir, logger)
		},
		BackendMemory: func(Config, logging.Logger) (Store, error) {
			return NewMemoryStore(), nil
		},
	}
)

// RegisterBackend registers a named backend constructor. Name is lower-cased
// internally. Registering an existing name overwrites it.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// Open constructs the configured backend.
func Open(cfg Config, logger logging.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendSQLite
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("kvstore backend %q not registered: available backends=%v", backend, ListBackends())
	}

	st, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open kvstore backend %q: %w", backend, err)
	}
	if st == nil {
		return nil, errors.New("kvstore constructor returned nil")
	}
	return st, nil
}

// ListBackends returns the registered backend names, sorted.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
