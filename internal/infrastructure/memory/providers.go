package memory

import (
	"context"
	"sort"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// Proveedores de datos de referencia sobre el almacén. A diferencia de los
// repos transaccionales, estos se consultan también fuera de Run y toman su
// propio lock de lectura.

var _ repository.CatalogProvider = (*CatalogProvider)(nil)
var _ repository.CustomerProvider = (*CustomerProvider)(nil)
var _ repository.BranchRepository = (*BranchProvider)(nil)
var _ repository.ReportsRepository = (*ReportsRepo)(nil)

// CatalogProvider catálogo de artículos en memoria.
type CatalogProvider struct {
	store *Store
}

// NewCatalogProvider construye el proveedor sobre el almacén.
func NewCatalogProvider(store *Store) *CatalogProvider {
	return &CatalogProvider{store: store}
}

// GetItem obtiene la referencia de un artículo sembrado con SeedItem.
func (p *CatalogProvider) GetItem(_ context.Context, itemID, variantID string) (*entity.ItemRef, error) {
	p.store.refMu.RLock()
	defer p.store.refMu.RUnlock()
	item, ok := p.store.items[itemKey(itemID, variantID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

// CustomerProvider clientes en memoria.
type CustomerProvider struct {
	store *Store
}

// NewCustomerProvider construye el proveedor sobre el almacén.
func NewCustomerProvider(store *Store) *CustomerProvider {
	return &CustomerProvider{store: store}
}

// GetCustomer obtiene un cliente sembrado con SeedCustomer.
func (p *CustomerProvider) GetCustomer(_ context.Context, id string) (*entity.CustomerRef, error) {
	p.store.refMu.RLock()
	defer p.store.refMu.RUnlock()
	c, ok := p.store.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// BranchProvider sucursales, cajas y bodegas en memoria.
type BranchProvider struct {
	store *Store
}

// NewBranchProvider construye el proveedor sobre el almacén.
func NewBranchProvider(store *Store) *BranchProvider {
	return &BranchProvider{store: store}
}

func (p *BranchProvider) GetBranch(_ context.Context, id string) (*entity.Branch, error) {
	p.store.refMu.RLock()
	defer p.store.refMu.RUnlock()
	b, ok := p.store.branches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (p *BranchProvider) GetRegister(_ context.Context, id string) (*entity.Register, error) {
	p.store.refMu.RLock()
	defer p.store.refMu.RUnlock()
	reg, ok := p.store.registers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &reg, nil
}

func (p *BranchProvider) GetWarehouse(_ context.Context, id string) (*entity.Warehouse, error) {
	p.store.refMu.RLock()
	defer p.store.refMu.RUnlock()
	w, ok := p.store.warehouses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &w, nil
}

// ReportsRepo consultas de reportes calculadas sobre el estado en memoria.
type ReportsRepo struct {
	store *Store
}

// NewReportsRepository construye el adaptador de reportes.
func NewReportsRepository(store *Store) *ReportsRepo {
	return &ReportsRepo{store: store}
}

func (r *ReportsRepo) InventorySummary(_ context.Context, warehouseID string) ([]repository.InventorySummaryRow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []repository.InventorySummaryRow
	for _, rec := range r.store.inventory {
		if rec.WarehouseID != warehouseID {
			continue
		}
		rows = append(rows, repository.InventorySummaryRow{
			WarehouseID: rec.WarehouseID,
			ItemID:      rec.ItemID,
			VariantID:   rec.VariantID,
			Quantity:    rec.Quantity,
			Reserved:    rec.ReservedQuantity,
			Available:   rec.Available(),
			AverageCost: rec.AverageCost,
			Valuation:   rec.Valuation(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ItemID != rows[j].ItemID {
			return rows[i].ItemID < rows[j].ItemID
		}
		return rows[i].VariantID < rows[j].VariantID
	})
	return rows, nil
}

func (r *ReportsRepo) DailySalesSummary(_ context.Context, branchID string, date time.Time) (*repository.DailySalesSummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	summary := &repository.DailySalesSummary{BranchID: branchID, Date: dayStart}

	for _, tx := range r.store.transactions {
		if tx.BranchID != branchID || tx.Type != entity.TxTypeSale {
			continue
		}
		if tx.CompletedAt == nil || tx.CompletedAt.Before(dayStart) || !tx.CompletedAt.Before(dayEnd) {
			continue
		}
		switch tx.Status {
		case entity.TxStatusCompleted, entity.TxStatusRefunded:
			summary.TransactionCount++
			summary.Subtotal = summary.Subtotal.Add(tx.Subtotal)
			summary.DiscountAmount = summary.DiscountAmount.Add(tx.DiscountAmount)
			summary.TaxAmount = summary.TaxAmount.Add(tx.TaxAmount)
			summary.Total = summary.Total.Add(tx.Total)
			for _, p := range r.store.payments[tx.ID] {
				switch p.Method {
				case entity.PaymentMethodCash:
					summary.CashTotal = summary.CashTotal.Add(p.Amount)
				case entity.PaymentMethodCard:
					summary.CardTotal = summary.CardTotal.Add(p.Amount)
				default:
					summary.OtherTotal = summary.OtherTotal.Add(p.Amount)
				}
			}
			// el vuelto sale del efectivo, una sola vez por transacción
			summary.CashTotal = summary.CashTotal.Sub(tx.ChangeAmount)
		case entity.TxStatusCancelled:
			summary.VoidedCount++
		}
	}
	return summary, nil
}
