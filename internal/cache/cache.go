package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vfg2006/sales-forecast-api/internal/config"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
)

// ObservationCache guarda as observações de receita já carregadas de cada tenant.
// Entradas expiram após o TTL e podem ser invalidadas depois de uma carga do ETL.
type ObservationCache interface {
	Get(ctx context.Context, tenant string) ([]domain.RevenueObservation, bool, error)
	Set(ctx context.Context, tenant string, observations []domain.RevenueObservation) error
	Invalidate(ctx context.Context, tenant string) error
}

// New cria o backend configurado em CACHE_BACKEND
func New(ctx context.Context, cfg *config.Config) (ObservationCache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return NewRedisCache(ctx, cfg.Redis, cfg.Cache.TTL)
	case config.CacheBackendMemory, "":
		return NewMemoryCache(cfg.Cache.TTL), nil
	default:
		return nil, fmt.Errorf("backend de cache desconhecido: %q", cfg.Cache.Backend)
	}
}

func cloneObservations(in []domain.RevenueObservation) []domain.RevenueObservation {
	out := make([]domain.RevenueObservation, len(in))
	copy(out, in)
	return out
}

func observationsKey(prefix, tenant string) string {
	if prefix == "" {
		return fmt.Sprintf("observations:%s", tenant)
	}
	return fmt.Sprintf("%s:observations:%s", prefix, tenant)
}

func expiresAt(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
