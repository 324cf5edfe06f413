package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de
// inventario. Solo inserta y consulta: los movimientos son inmutables.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByKey devuelve los movimientos de una llave en orden de creación
	// (la cadena before/after debe leerse en este orden).
	ListByKey(ctx context.Context, warehouseID, itemID, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error)
}
