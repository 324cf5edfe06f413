package repository

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// InventoryRepository define el puerto para consultar/actualizar existencias
// por (bodega, artículo, variante). Usado dentro de transacciones para
// garantizar consistencia.
type InventoryRepository interface {
	Get(ctx context.Context, warehouseID, itemID, variantID string) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE); si la llave
	// no existe devuelve un registro en cero listo para el primer movimiento.
	GetForUpdate(ctx context.Context, warehouseID, itemID, variantID string) (*entity.InventoryRecord, error)
	Upsert(ctx context.Context, record *entity.InventoryRecord) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error)
}
