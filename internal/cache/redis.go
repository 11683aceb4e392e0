package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/sales-forecast-api/internal/config"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisCache compartilha as observações entre réplicas do serviço
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, cfg config.Redis, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisCacheWithClient(client, cfg.Prefix, ttl), nil
}

func newRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, tenant string) ([]domain.RevenueObservation, bool, error) {
	data, err := c.client.Get(ctx, observationsKey(c.prefix, tenant)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("erro ao ler observações do redis: %w", err)
	}

	var observations []domain.RevenueObservation
	if err := json.Unmarshal(data, &observations); err != nil {
		return nil, false, fmt.Errorf("erro ao deserializar observações: %w", err)
	}

	return observations, true, nil
}

func (c *RedisCache) Set(ctx context.Context, tenant string, observations []domain.RevenueObservation) error {
	data, err := json.Marshal(observations)
	if err != nil {
		return fmt.Errorf("erro ao serializar observações: %w", err)
	}

	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}

	if err := c.client.Set(ctx, observationsKey(c.prefix, tenant), data, ttl).Err(); err != nil {
		return fmt.Errorf("erro ao gravar observações no redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, tenant string) error {
	if err := c.client.Del(ctx, observationsKey(c.prefix, tenant)).Err(); err != nil {
		return fmt.Errorf("erro ao invalidar observações no redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
