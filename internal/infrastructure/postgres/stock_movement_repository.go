package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de inventario sobre PostgreSQL
// (usable con pool o tx). Solo inserta y consulta: los movimientos son
// inmutables.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const stockMovementColumns = `id, warehouse_id, item_id, variant_id, kind, quantity, quantity_before, quantity_after, unit_cost, reference_type, reference_id, notes, created_at, created_by`

// Create persiste un movimiento del libro.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO stock_movements (` + stockMovementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.WarehouseID, movement.ItemID, movement.VariantID,
		movement.Kind, movement.Quantity, movement.QuantityBefore, movement.QuantityAfter,
		movement.UnitCost, movement.ReferenceType, movement.ReferenceID,
		movement.Notes, movement.CreatedAt, nullable(movement.CreatedBy),
	)
	if err != nil {
		return translateErr(fmt.Errorf("create stock movement: %w", err))
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + stockMovementColumns + ` FROM stock_movements WHERE id = $1`
	row := r.q.QueryRow(ctx, query, id)
	m, err := scanStockMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// ListByKey devuelve los movimientos de una llave en orden de creación,
// opcionalmente acotados por fecha.
func (r *StockMovementRepo) ListByKey(ctx context.Context, warehouseID, itemID, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE warehouse_id = $1 AND item_id = $2 AND variant_id = $3
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at < $5)
		ORDER BY created_at, id
		LIMIT $6 OFFSET $7`
	rows, err := r.q.Query(ctx, query, warehouseID, itemID, variantID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return collectStockMovements(rows)
}

// ListByReference devuelve los movimientos generados por un documento
// (ej. todas las salidas de una venta).
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements by reference: %w", err)
	}
	return collectStockMovements(rows)
}

func scanStockMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var createdBy *string
	err := row.Scan(
		&m.ID, &m.WarehouseID, &m.ItemID, &m.VariantID,
		&m.Kind, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
		&m.UnitCost, &m.ReferenceType, &m.ReferenceID,
		&m.Notes, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

func collectStockMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var movements []*entity.StockMovement
	for rows.Next() {
		m, err := scanStockMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// nullable convierte cadena vacía en NULL para columnas con FK opcional.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
