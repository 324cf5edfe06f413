package cache

import (
	"context"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/application/reports"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ reports.Cache = (*NoopCache)(nil)

// NoopCache caché deshabilitada: siempre miss, nunca guarda.
type NoopCache struct{}

// NewNoopCache construye la caché nula.
func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) GetDailySales(context.Context, string) (*repository.DailySalesSummary, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetDailySales(context.Context, string, *repository.DailySalesSummary, time.Duration) error {
	return nil
}

func (NoopCache) GetInventorySummary(context.Context, string) ([]repository.InventorySummaryRow, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetInventorySummary(context.Context, string, []repository.InventorySummaryRow, time.Duration) error {
	return nil
}
