package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL
// (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `warehouse_id, item_id, variant_id, quantity, reserved_quantity, average_cost, updated_at`

// Get obtiene el registro de existencias de una llave; si no existe devuelve
// un registro en cero (la llave se crea con el primer movimiento).
func (r *InventoryRepo) Get(ctx context.Context, warehouseID, itemID, variantID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_records
		WHERE warehouse_id = $1 AND item_id = $2 AND variant_id = $3`
	rec, err := r.scanOne(ctx, query, warehouseID, itemID, variantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return zeroRecord(warehouseID, itemID, variantID), nil
	}
	return rec, err
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
// Si la llave no existe todavía no hay fila que bloquear: se siembra en cero
// con ON CONFLICT DO NOTHING y se vuelve a leer con el lock. Dos primeros
// movimientos concurrentes de la misma llave quedan así serializados sobre
// la fila sembrada; sin la siembra ambos calcularían desde cero y el Upsert
// del segundo pisaría las cantidades del primero.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, warehouseID, itemID, variantID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_records
		WHERE warehouse_id = $1 AND item_id = $2 AND variant_id = $3
		FOR UPDATE`
	rec, err := r.scanOne(ctx, query, warehouseID, itemID, variantID)
	if err == nil || !errors.Is(err, pgx.ErrNoRows) {
		return rec, err
	}
	seed := `
		INSERT INTO inventory_records (warehouse_id, item_id, variant_id, quantity, reserved_quantity, average_cost, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, now())
		ON CONFLICT (warehouse_id, item_id, variant_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, seed, warehouseID, itemID, variantID); err != nil {
		return nil, translateErr(fmt.Errorf("seed inventory record: %w", err))
	}
	rec, err = r.scanOne(ctx, query, warehouseID, itemID, variantID)
	if err != nil {
		return nil, translateErr(fmt.Errorf("lock seeded inventory record: %w", err))
	}
	return rec, nil
}

func zeroRecord(warehouseID, itemID, variantID string) *entity.InventoryRecord {
	return &entity.InventoryRecord{
		WarehouseID:      warehouseID,
		ItemID:           itemID,
		VariantID:        variantID,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
		AverageCost:      decimal.Zero,
	}
}

// scanOne devuelve pgx.ErrNoRows sin traducir; los llamadores deciden si la
// ausencia de fila es un registro en cero o una siembra pendiente.
func (r *InventoryRepo) scanOne(ctx context.Context, query, warehouseID, itemID, variantID string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, query, warehouseID, itemID, variantID).Scan(
		&rec.WarehouseID, &rec.ItemID, &rec.VariantID,
		&rec.Quantity, &rec.ReservedQuantity, &rec.AverageCost, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, translateErr(fmt.Errorf("get inventory record: %w", err))
	}
	return &rec, nil
}

// Upsert inserta o actualiza el registro de existencias por llave.
func (r *InventoryRepo) Upsert(ctx context.Context, record *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (warehouse_id, item_id, variant_id, quantity, reserved_quantity, average_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (warehouse_id, item_id, variant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              reserved_quantity = EXCLUDED.reserved_quantity,
		              average_cost = EXCLUDED.average_cost,
		              updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		record.WarehouseID, record.ItemID, record.VariantID,
		record.Quantity, record.ReservedQuantity, record.AverageCost,
	)
	if err != nil {
		return translateErr(fmt.Errorf("upsert inventory record: %w", err))
	}
	return nil
}

// ListByWarehouse lista los registros de una bodega ordenados por artículo.
func (r *InventoryRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_records
		WHERE warehouse_id = $1
		ORDER BY item_id, variant_id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()

	var records []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(
			&rec.WarehouseID, &rec.ItemID, &rec.VariantID,
			&rec.Quantity, &rec.ReservedQuantity, &rec.AverageCost, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
