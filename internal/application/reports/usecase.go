// Package reports implementa las consultas de solo lectura del núcleo.
// Toleran consistencia eventual: los resúmenes pueden servirse desde una
// caché corta y siempre reflejan al menos la última escritura confirmada
// antes del llenado de caché.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

// Cache puerto de caché de lectura para los resúmenes. Una implementación
// Noop deshabilita la caché sin tocar el caso de uso.
type Cache interface {
	GetDailySales(ctx context.Context, key string) (*repository.DailySalesSummary, bool, error)
	SetDailySales(ctx context.Context, key string, value *repository.DailySalesSummary, ttl time.Duration) error
	GetInventorySummary(ctx context.Context, key string) ([]repository.InventorySummaryRow, bool, error)
	SetInventorySummary(ctx context.Context, key string, value []repository.InventorySummaryRow, ttl time.Duration) error
}

// UseCase consultas de reportes.
type UseCase struct {
	repo  repository.ReportsRepository
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewUseCase construye el caso de uso. ttl cero usa 30s.
func NewUseCase(repo repository.ReportsRepository, cache Cache, ttl time.Duration, log *logger.Logger) *UseCase {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &UseCase{repo: repo, cache: cache, ttl: ttl, log: log}
}

// InventorySummary devuelve el resumen de existencias de una bodega
// (cantidad, reservado, disponible y valorización a costo promedio).
// Una falla de caché degrada a consulta directa, nunca a error.
func (uc *UseCase) InventorySummary(ctx context.Context, warehouseID string) ([]repository.InventorySummaryRow, error) {
	key := "inventory_summary:" + warehouseID
	if rows, ok, err := uc.cache.GetInventorySummary(ctx, key); err == nil && ok {
		return rows, nil
	} else if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("caché de reportes no disponible")
	}
	rows, err := uc.repo.InventorySummary(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetInventorySummary(ctx, key, rows, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo llenar la caché de reportes")
	}
	return rows, nil
}

// DailySalesSummary devuelve el resumen de ventas de una sucursal en un día.
func (uc *UseCase) DailySalesSummary(ctx context.Context, branchID string, date time.Time) (*repository.DailySalesSummary, error) {
	key := fmt.Sprintf("daily_sales:%s:%s", branchID, date.Format("2006-01-02"))
	if summary, ok, err := uc.cache.GetDailySales(ctx, key); err == nil && ok {
		return summary, nil
	} else if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("caché de reportes no disponible")
	}
	summary, err := uc.repo.DailySalesSummary(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetDailySales(ctx, key, summary, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo llenar la caché de reportes")
	}
	return summary, nil
}
