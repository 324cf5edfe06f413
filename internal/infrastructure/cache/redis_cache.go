// Package cache implementa la caché de reportes sobre Redis. La caché es
// opcional: sin Redis configurado se usa NoopCache y las consultas van
// directo a la base.
package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/tu-usuario/pos-ledger/internal/application/reports"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ reports.Cache = (*RedisReportCache)(nil)

// RedisReportCache caché de resúmenes con TTL corto sobre Redis.
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache construye la caché con su cliente.
func NewRedisReportCache(addr, password string, db int) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisReportCache{client: client}
}

// Ping verifica la conexión.
func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// GetDailySales lee el resumen de ventas del día, si está cacheado.
func (c *RedisReportCache) GetDailySales(ctx context.Context, key string) (*repository.DailySalesSummary, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var summary repository.DailySalesSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

// SetDailySales cachea el resumen de ventas del día.
func (c *RedisReportCache) SetDailySales(ctx context.Context, key string, value *repository.DailySalesSummary, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// GetInventorySummary lee el resumen de inventario, si está cacheado.
func (c *RedisReportCache) GetInventorySummary(ctx context.Context, key string) ([]repository.InventorySummaryRow, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rows []repository.InventorySummaryRow
	if err := json.Unmarshal([]byte(val), &rows); err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// SetInventorySummary cachea el resumen de inventario.
func (c *RedisReportCache) SetInventorySummary(ctx context.Context, key string, value []repository.InventorySummaryRow, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
