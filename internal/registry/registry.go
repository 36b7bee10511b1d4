package registry

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Registry is a process-wide table keyed by identifier. Reads use an
// immutable snapshot and never lock; writers copy the snapshot. Registering
// an existing id replaces it and logs a warning.
type Registry[T any] struct {
	kind    string
	logger  interfaces.Logger
	mu      sync.Mutex
	entries atomic.Pointer[map[string]T]
}

// New returns an empty registry. kind names the entries in log output.
func New[T any](kind string, logger interfaces.Logger) *Registry[T] {
	r := &Registry[T]{
		kind:   kind,
		logger: logging.WithFields(logging.Or(logger), map[string]any{"registry": kind}),
	}
	empty := map[string]T{}
	r.entries.Store(&empty)
	return r
}

// Register stores value under id and reports whether an entry was
// replaced. Blank ids are ignored.
func (r *Registry[T]) Register(id string, value T) bool {
	key := canonicalKey(id)
	if key == "" {
		r.logger.Warn("registry.register.skipped", "reason", "empty id")
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.entries.Load()
	_, replaced := current[key]
	next := make(map[string]T, len(current)+1)
	maps.Copy(next, current)
	next[key] = value
	r.entries.Store(&next)

	if replaced {
		r.logger.Warn("registry.register.overwrite", "kind", r.kind, "id", key)
	} else {
		r.logger.Debug("registry.register", "kind", r.kind, "id", key)
	}
	return replaced
}

// Lookup returns the entry for id.
func (r *Registry[T]) Lookup(id string) (T, bool) {
	value, ok := (*r.entries.Load())[canonicalKey(id)]
	return value, ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry[T]) IDs() []string {
	return slices.Sorted(maps.Keys(*r.entries.Load()))
}

// Snapshot returns a copy of the current entries.
func (r *Registry[T]) Snapshot() map[string]T {
	return maps.Clone(*r.entries.Load())
}

func (r *Registry[T]) Len() int {
	return len(*r.entries.Load())
}

// Kind returns the entry kind given at construction.
func (r *Registry[T]) Kind() string {
	return r.kind
}

func canonicalKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
