package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.CatalogProvider = (*CatalogRepo)(nil)
var _ repository.CustomerProvider = (*CustomerRepo)(nil)
var _ repository.BranchRepository = (*BranchRepo)(nil)

// CatalogRepo lectura del catálogo de artículos. El núcleo no es dueño de
// estas tablas: solo las consulta por ID y congela los valores en la venta.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el proveedor de catálogo.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// GetItem obtiene la referencia de un artículo, opcionalmente con variante.
// La variante hereda los atributos del artículo y sobreescribe SKU y precios.
func (r *CatalogRepo) GetItem(ctx context.Context, itemID, variantID string) (*entity.ItemRef, error) {
	query := `
		SELECT id, sku, name, selling_price, cost_price, tax_rate, tax_inclusive,
		       track_inventory, is_sellable, allow_decimal_qty
		FROM items WHERE id = $1`
	var item entity.ItemRef
	err := r.q.QueryRow(ctx, query, itemID).Scan(
		&item.ID, &item.SKU, &item.Name, &item.SellingPrice, &item.CostPrice,
		&item.TaxRate, &item.TaxInclusive, &item.TrackInventory, &item.IsSellable, &item.AllowDecimalQty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if variantID == "" {
		return &item, nil
	}

	variantQuery := `
		SELECT id, sku, selling_price, cost_price
		FROM item_variants WHERE id = $1 AND item_id = $2`
	err = r.q.QueryRow(ctx, variantQuery, variantID, itemID).Scan(
		&item.VariantID, &item.SKU, &item.SellingPrice, &item.CostPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get item variant: %w", err)
	}
	return &item, nil
}

// CustomerRepo lectura de clientes (colaborador de identidad).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el proveedor de clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetCustomer obtiene la referencia de un cliente por ID.
func (r *CustomerRepo) GetCustomer(ctx context.Context, id string) (*entity.CustomerRef, error) {
	query := `SELECT id, document, name, email FROM customers WHERE id = $1`
	var c entity.CustomerRef
	var document, email *string
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &document, &c.Name, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	c.Document = deref(document)
	c.Email = deref(email)
	return &c, nil
}

// BranchRepo lectura de sucursales, cajas y bodegas.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de sucursales.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

// GetBranch obtiene una sucursal por ID.
func (r *BranchRepo) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	query := `SELECT id, code, name, address, created_at, updated_at FROM branches WHERE id = $1`
	var b entity.Branch
	var address *string
	err := r.q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Code, &b.Name, &address, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	b.Address = deref(address)
	return &b, nil
}

// GetRegister obtiene una caja registradora por ID.
func (r *BranchRepo) GetRegister(ctx context.Context, id string) (*entity.Register, error) {
	query := `SELECT id, branch_id, name, created_at, updated_at FROM registers WHERE id = $1`
	var reg entity.Register
	err := r.q.QueryRow(ctx, query, id).Scan(&reg.ID, &reg.BranchID, &reg.Name, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get register: %w", err)
	}
	return &reg, nil
}

// GetWarehouse obtiene una bodega por ID.
func (r *BranchRepo) GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `SELECT id, branch_id, name, address, created_at, updated_at FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	var address *string
	err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.BranchID, &w.Name, &address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	w.Address = deref(address)
	return &w, nil
}
