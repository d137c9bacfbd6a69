// Package registry resolves upstream space ids per space type with
// override precedence and a TTL-cached inline refresh.
package registry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
	"github.com/quran-omni/omnisearch/internal/metrics"
)

// SpaceLister lists the available upstream spaces.
type SpaceLister interface {
	ListSpaces(ctx context.Context) (map[string]string, error)
}

// Registry caches the space type to space id mapping. Overrides are
// supplied once at construction and never expire; the listed mapping is
// refreshed inline when a Resolve call observes an expired cache.
//
// Reads only take the snapshot lock, so a caller with a valid cache never
// waits on an in-flight upstream refresh. refreshMu serializes refreshes.
type Registry struct {
	lister    SpaceLister
	overrides map[domain.SpaceType]string
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger

	refreshMu sync.Mutex

	mu        sync.RWMutex
	cached    map[domain.SpaceType]string
	lastFetch time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock injects a clock, used by tests to control TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates a space registry.
func New(lister SpaceLister, overrides map[domain.SpaceType]string, ttl time.Duration, logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		lister:    lister,
		overrides: overrides,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the merged space type to id mapping. Overrides win per
// type. A refresh failure keeps the prior cache; the stale mapping is
// still served.
func (r *Registry) Resolve(ctx context.Context) map[domain.SpaceType]string {
	if len(r.overrides) == len(domain.AllSpaceTypes()) {
		return cloneMapping(r.overrides)
	}

	cached, lastFetch := r.snapshot()
	if cached == nil || r.expired(lastFetch) {
		r.refresh(ctx)
		cached, _ = r.snapshot()
	}

	result := cloneMapping(cached)
	for st, id := range r.overrides {
		result[st] = id
	}
	return result
}

func (r *Registry) snapshot() (map[domain.SpaceType]string, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cached, r.lastFetch
}

func (r *Registry) expired(lastFetch time.Time) bool {
	if lastFetch.IsZero() {
		return true
	}
	return lastFetch.Add(r.ttl).Before(r.now())
}

// refresh replaces the cached mapping from the upstream space list. On
// failure the prior cache is kept unchanged. The snapshot lock is held
// only for the swap, never across the upstream call.
func (r *Registry) refresh(ctx context.Context) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	if cached, lastFetch := r.snapshot(); cached != nil && !r.expired(lastFetch) {
		// Another caller refreshed while we waited on the lock.
		return
	}

	spaces, err := r.lister.ListSpaces(ctx)
	if err != nil {
		metrics.RegistryRefreshTotal.WithLabelValues("error").Inc()
		r.logger.Warn("failed to refresh space registry", zap.Error(err))
		return
	}

	mapped := make(map[domain.SpaceType]string)
	for name, id := range spaces {
		if st, ok := domain.ParseSpaceType(name); ok {
			mapped[st] = id
		}
	}

	r.mu.Lock()
	r.cached = mapped
	r.lastFetch = r.now()
	r.mu.Unlock()

	metrics.RegistryRefreshTotal.WithLabelValues("success").Inc()
	r.logger.Debug("space registry refreshed", zap.Int("spaces", len(mapped)))
}

func cloneMapping(m map[domain.SpaceType]string) map[domain.SpaceType]string {
	result := make(map[domain.SpaceType]string, len(m))
	for st, id := range m {
		result[st] = id
	}
	return result
}
