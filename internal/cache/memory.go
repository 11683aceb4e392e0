package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vfg2006/sales-forecast-api/internal/domain"
)

type entry struct {
	observations []domain.RevenueObservation
	exp          time.Time
}

// MemoryCache é o backend em processo, com expiração verificada na leitura
type MemoryCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		m:   make(map[string]entry),
		ttl: ttl,
		now: time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, tenant string) ([]domain.RevenueObservation, bool, error) {
	c.mu.RLock()
	e, ok := c.m[tenant]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !e.exp.IsZero() && c.now().After(e.exp) {
		c.mu.Lock()
		if current, ok := c.m[tenant]; ok && current.exp.Equal(e.exp) {
			delete(c.m, tenant)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return cloneObservations(e.observations), true, nil
}

func (c *MemoryCache) Set(_ context.Context, tenant string, observations []domain.RevenueObservation) error {
	c.mu.Lock()
	c.m[tenant] = entry{
		observations: cloneObservations(observations),
		exp:          expiresAt(c.now(), c.ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, tenant string) error {
	c.mu.Lock()
	delete(c.m, tenant)
	c.mu.Unlock()
	return nil
}
