// Package ledger implementa el libro de inventario: la única fuente de
// verdad de existencias por (bodega, artículo, variante). Toda mutación de
// stock pasa por aquí, con bloqueo de fila (SELECT FOR UPDATE) y
// Commit/Rollback atómico del registro y del hecho de movimiento.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	domledger "github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// Config políticas del libro de inventario.
type Config struct {
	// AllowNegativeStock permite que el disponible quede negativo (backorder).
	// Por defecto false: la política del sistema es rechazar sobreventa.
	AllowNegativeStock bool
	// MaxRetries reintentos de la operación completa ante ErrConcurrencyConflict.
	MaxRetries int
}

// StockLedgerUseCase aplica movimientos de inventario de forma transaccional.
type StockLedgerUseCase struct {
	txRunner repository.TxRunner
	catalog  repository.CatalogProvider
	auditor  *audit.Recorder
	cfg      Config
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	txRunner repository.TxRunner,
	catalog repository.CatalogProvider,
	auditor *audit.Recorder,
	cfg Config,
) *StockLedgerUseCase {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	return &StockLedgerUseCase{txRunner: txRunner, catalog: catalog, auditor: auditor, cfg: cfg}
}

// MovementInput entrada para aplicar un movimiento de inventario.
// Quantity es firmada: positiva entrada, negativa salida. UnitCost es
// obligatorio en entradas que afectan el costo promedio.
type MovementInput struct {
	WarehouseID   string
	ItemID        string
	VariantID     string
	Kind          string
	Quantity      decimal.Decimal
	UnitCost      *decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Notes         string
	ActorID       string
}

func validKind(kind string) bool {
	switch kind {
	case entity.MovementKindSale, entity.MovementKindReturn, entity.MovementKindAdjustment,
		entity.MovementKindTransfer, entity.MovementKindConsumption:
		return true
	}
	return false
}

// ApplyMovement valida la entrada, inicia una transacción y aplica el
// movimiento con reintentos ante conflictos de concurrencia.
func (uc *StockLedgerUseCase) ApplyMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if in.WarehouseID == "" || in.ItemID == "" || !validKind(in.Kind) || in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.catalog.GetItem(ctx, in.ItemID, in.VariantID)
	if err != nil || item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.TrackInventory {
		return nil, domain.ErrInvalidInput
	}
	var mov *entity.StockMovement
	err = repository.RunWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(r repository.Repos) error {
		var txErr error
		mov, txErr = uc.ApplyMovementInTx(ctx, r, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyMovementInTx aplica un movimiento usando los repositorios de la
// transacción del caller (el Transaction Processor lo invoca una vez por
// línea dentro de su propia unidad atómica).
//
// Secuencia: bloquea la fila, calcula before/after, rechaza sobreventa según
// política, actualiza costo promedio solo en entradas con costo, y escribe
// registro y movimiento juntos. La cadena before/after por llave queda
// causalmente ordenada porque el lock serializa los escritores.
func (uc *StockLedgerUseCase) ApplyMovementInTx(ctx context.Context, r repository.Repos, in MovementInput) (*entity.StockMovement, error) {
	rec, err := r.Inventory.GetForUpdate(ctx, in.WarehouseID, in.ItemID, in.VariantID)
	if err != nil {
		return nil, err
	}
	before := audit.InventoryRecordSnapshot(rec)

	quantityBefore := rec.Quantity
	quantityAfter := quantityBefore.Add(in.Quantity)

	// Salidas: el disponible (cantidad - reservado) no puede quedar negativo
	// salvo que la política de backorder esté habilitada.
	if in.Quantity.IsNegative() && !uc.cfg.AllowNegativeStock {
		if quantityAfter.Sub(rec.ReservedQuantity).IsNegative() {
			return nil, domain.ErrInsufficientStock
		}
	}

	unitCost := rec.AverageCost
	if in.Quantity.IsPositive() && in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		rec.AverageCost = domledger.WeightedAverageCost(quantityBefore, rec.AverageCost, in.Quantity, *in.UnitCost)
		unitCost = *in.UnitCost
	}

	now := time.Now()
	rec.Quantity = quantityAfter
	rec.UpdatedAt = now
	if err := r.Inventory.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		WarehouseID:    in.WarehouseID,
		ItemID:         in.ItemID,
		VariantID:      in.VariantID,
		Kind:           in.Kind,
		Quantity:       in.Quantity,
		QuantityBefore: quantityBefore,
		QuantityAfter:  quantityAfter,
		UnitCost:       unitCost,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		Notes:          in.Notes,
		CreatedAt:      now,
		CreatedBy:      in.ActorID,
	}
	if err := r.StockMovements.Create(ctx, mov); err != nil {
		return nil, err
	}

	after := audit.InventoryRecordSnapshot(rec)
	if err := uc.auditor.Record(ctx, r.Audit, "inventory_records", inventoryKey(rec), entity.AuditActionUpdate, before, after, in.ActorID); err != nil {
		return nil, err
	}
	return mov, nil
}

func inventoryKey(rec *entity.InventoryRecord) string {
	key := rec.WarehouseID + ":" + rec.ItemID
	if rec.VariantID != "" {
		key += ":" + rec.VariantID
	}
	return key
}

// AdjustStock registra un ajuste manual (positivo o negativo). Los ajustes
// positivos con costo unitario actualizan el costo promedio.
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, warehouseID, itemID, variantID string, quantity decimal.Decimal, unitCost *decimal.Decimal, reason, actorID string) (*entity.StockMovement, error) {
	return uc.ApplyMovement(ctx, MovementInput{
		WarehouseID:   warehouseID,
		ItemID:        itemID,
		VariantID:     variantID,
		Kind:          entity.MovementKindAdjustment,
		Quantity:      quantity,
		UnitCost:      unitCost,
		ReferenceType: entity.ReferenceAdjustment,
		ReferenceID:   uuid.New().String(),
		Notes:         reason,
		ActorID:       actorID,
	})
}

// TransferItem una línea de traslado entre bodegas.
type TransferItem struct {
	ItemID    string
	VariantID string
	Quantity  decimal.Decimal
}

// TransferStock traslada artículos entre bodegas en una sola transacción:
// resta en origen y suma en destino al costo promedio de origen, con dos
// movimientos TRANSFER por línea. Si cualquier línea falla, nada se aplica.
func (uc *StockLedgerUseCase) TransferStock(ctx context.Context, fromWarehouseID, toWarehouseID string, items []TransferItem, actorID string) ([]*entity.StockMovement, error) {
	if fromWarehouseID == "" || toWarehouseID == "" || fromWarehouseID == toWarehouseID || len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range items {
		if it.ItemID == "" || !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
	}
	transferID := uuid.New().String()
	var movements []*entity.StockMovement
	err := repository.RunWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(r repository.Repos) error {
		movements = movements[:0]
		for _, it := range items {
			// Resta en origen: la salida usa el costo promedio vigente de la
			// bodega origen, que viaja como costo de la entrada en destino.
			out, err := uc.ApplyMovementInTx(ctx, r, MovementInput{
				WarehouseID:   fromWarehouseID,
				ItemID:        it.ItemID,
				VariantID:     it.VariantID,
				Kind:          entity.MovementKindTransfer,
				Quantity:      it.Quantity.Neg(),
				ReferenceType: entity.ReferenceAdjustment,
				ReferenceID:   transferID,
				ActorID:       actorID,
			})
			if err != nil {
				return err
			}
			cost := out.UnitCost
			in, err := uc.ApplyMovementInTx(ctx, r, MovementInput{
				WarehouseID:   toWarehouseID,
				ItemID:        it.ItemID,
				VariantID:     it.VariantID,
				Kind:          entity.MovementKindTransfer,
				Quantity:      it.Quantity,
				UnitCost:      &cost,
				ReferenceType: entity.ReferenceAdjustment,
				ReferenceID:   transferID,
				ActorID:       actorID,
			})
			if err != nil {
				return err
			}
			movements = append(movements, out, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// ListMovements devuelve el historial de movimientos de una llave en orden
// de creación, opcionalmente acotado por fecha.
func (uc *StockLedgerUseCase) ListMovements(ctx context.Context, warehouseID, itemID, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var movements []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		movements, err = r.StockMovements.ListByKey(ctx, warehouseID, itemID, variantID, from, to, limit, offset)
		return err
	})
	return movements, err
}

// ListInventory devuelve los registros de existencias de una bodega.
func (uc *StockLedgerUseCase) ListInventory(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var records []*entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		records, err = r.Inventory.ListByWarehouse(ctx, warehouseID, limit, offset)
		return err
	})
	return records, err
}

// ReserveInTx aparta cantidad de una llave para un documento pendiente
// (carrito en hold). No genera movimiento: la reserva no cambia la cantidad
// en mano, solo el disponible.
func (uc *StockLedgerUseCase) ReserveInTx(ctx context.Context, r repository.Repos, warehouseID, itemID, variantID string, quantity decimal.Decimal, actorID string) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	rec, err := r.Inventory.GetForUpdate(ctx, warehouseID, itemID, variantID)
	if err != nil {
		return err
	}
	before := audit.InventoryRecordSnapshot(rec)
	if !uc.cfg.AllowNegativeStock && rec.Available().LessThan(quantity) {
		return domain.ErrInsufficientStock
	}
	rec.ReservedQuantity = rec.ReservedQuantity.Add(quantity)
	rec.UpdatedAt = time.Now()
	if err := r.Inventory.Upsert(ctx, rec); err != nil {
		return err
	}
	return uc.auditor.Record(ctx, r.Audit, "inventory_records", inventoryKey(rec), entity.AuditActionUpdate, before, audit.InventoryRecordSnapshot(rec), actorID)
}

// ReleaseReservationInTx libera cantidad previamente reservada.
func (uc *StockLedgerUseCase) ReleaseReservationInTx(ctx context.Context, r repository.Repos, warehouseID, itemID, variantID string, quantity decimal.Decimal, actorID string) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	rec, err := r.Inventory.GetForUpdate(ctx, warehouseID, itemID, variantID)
	if err != nil {
		return err
	}
	before := audit.InventoryRecordSnapshot(rec)
	rec.ReservedQuantity = rec.ReservedQuantity.Sub(quantity)
	if rec.ReservedQuantity.IsNegative() {
		rec.ReservedQuantity = decimal.Zero
	}
	rec.UpdatedAt = time.Now()
	if err := r.Inventory.Upsert(ctx, rec); err != nil {
		return err
	}
	return uc.auditor.Record(ctx, r.Audit, "inventory_records", inventoryKey(rec), entity.AuditActionUpdate, before, audit.InventoryRecordSnapshot(rec), actorID)
}
