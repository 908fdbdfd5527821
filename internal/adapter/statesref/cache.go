package statesref

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/observability"
)

// CachedLister wraps a StateLister with a TTL cache. The reference list is
// effectively static, so one entry with a long TTL covers it; errors are
// never cached so a failed fetch retries on the next call.
type CachedLister struct {
	inner   domain.StateLister
	ttl     time.Duration
	metrics *observability.Metrics

	mu        sync.Mutex
	states    []domain.StateRef
	fetchedAt time.Time
}

// NewCachedLister creates a cache decorator around a state lister.
func NewCachedLister(inner domain.StateLister, ttl time.Duration, metrics *observability.Metrics) *CachedLister {
	return &CachedLister{
		inner:   inner,
		ttl:     ttl,
		metrics: metrics,
	}
}

func (c *CachedLister) ListStates(ctx context.Context) ([]domain.StateRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := domain.Now()
	if c.states != nil && now.Sub(c.fetchedAt) < c.ttl {
		c.metrics.StatesRefCache.WithLabelValues("hit").Inc()
		return c.states, nil
	}
	c.metrics.StatesRefCache.WithLabelValues("miss").Inc()

	states, err := c.inner.ListStates(ctx)
	if err != nil {
		return nil, err
	}
	c.states = states
	c.fetchedAt = now
	return states, nil
}
