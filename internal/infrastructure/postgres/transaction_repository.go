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

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository sobre PostgreSQL
// (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `id, number, type, status, branch_id, warehouse_id, register_id, customer_id,
	subtotal, discount_amount, tax_amount, total, paid_amount, change_amount,
	ref_transaction_id, held_at, void_reason, voided_at, voided_by,
	completed_at, created_at, updated_at, created_by`

// Create persiste la cabecera de la transacción.
func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, nullable(tx.Number), tx.Type, tx.Status,
		tx.BranchID, tx.WarehouseID, tx.RegisterID, nullable(tx.CustomerID),
		tx.Subtotal, tx.DiscountAmount, tx.TaxAmount, tx.Total, tx.PaidAmount, tx.ChangeAmount,
		nullable(tx.RefTransactionID), tx.HeldAt, nullable(tx.VoidReason), tx.VoidedAt, nullable(tx.VoidedBy),
		tx.CompletedAt, tx.CreatedAt, tx.UpdatedAt, nullable(tx.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return translateErr(fmt.Errorf("create transaction: %w", err))
	}
	return nil
}

// Update actualiza la cabecera (estado, totales, número, marcas de anulación).
func (r *TransactionRepo) Update(ctx context.Context, tx *entity.Transaction) error {
	tx.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE transactions SET
			number = $2, status = $3, customer_id = $4,
			subtotal = $5, discount_amount = $6, tax_amount = $7, total = $8,
			paid_amount = $9, change_amount = $10,
			ref_transaction_id = $11, held_at = $12,
			void_reason = $13, voided_at = $14, voided_by = $15,
			completed_at = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		tx.ID, nullable(tx.Number), tx.Status, nullable(tx.CustomerID),
		tx.Subtotal, tx.DiscountAmount, tx.TaxAmount, tx.Total,
		tx.PaidAmount, tx.ChangeAmount,
		nullable(tx.RefTransactionID), tx.HeldAt,
		nullable(tx.VoidReason), tx.VoidedAt, nullable(tx.VoidedBy),
		tx.CompletedAt, tx.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return translateErr(fmt.Errorf("update transaction: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una transacción por ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetForUpdate obtiene la transacción y bloquea la fila (SELECT FOR UPDATE).
func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *TransactionRepo) scanOne(ctx context.Context, query, id string) (*entity.Transaction, error) {
	var tx entity.Transaction
	var number, customerID, refID, voidReason, voidedBy, createdBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&tx.ID, &number, &tx.Type, &tx.Status,
		&tx.BranchID, &tx.WarehouseID, &tx.RegisterID, &customerID,
		&tx.Subtotal, &tx.DiscountAmount, &tx.TaxAmount, &tx.Total, &tx.PaidAmount, &tx.ChangeAmount,
		&refID, &tx.HeldAt, &voidReason, &tx.VoidedAt, &voidedBy,
		&tx.CompletedAt, &tx.CreatedAt, &tx.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateErr(fmt.Errorf("get transaction: %w", err))
	}
	tx.Number = deref(number)
	tx.CustomerID = deref(customerID)
	tx.RefTransactionID = deref(refID)
	tx.VoidReason = deref(voidReason)
	tx.VoidedBy = deref(voidedBy)
	tx.CreatedBy = deref(createdBy)
	return &tx, nil
}

// CreateItem persiste una línea de la transacción.
func (r *TransactionRepo) CreateItem(ctx context.Context, item *entity.TransactionItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transaction_items (id, transaction_id, item_id, variant_id, name, quantity,
			unit_price, discount_amount, tax_rate, tax_inclusive, subtotal, tax_amount, total,
			unit_cost, track_inventory)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.TransactionID, item.ItemID, item.VariantID, item.Name, item.Quantity,
		item.UnitPrice, item.DiscountAmount, item.TaxRate, item.TaxInclusive,
		item.Subtotal, item.TaxAmount, item.Total,
		item.UnitCost, item.TrackInventory,
	)
	if err != nil {
		return translateErr(fmt.Errorf("create transaction item: %w", err))
	}
	return nil
}

// ListItems lista las líneas de una transacción en orden de inserción.
func (r *TransactionRepo) ListItems(ctx context.Context, transactionID string) ([]*entity.TransactionItem, error) {
	query := `
		SELECT id, transaction_id, item_id, variant_id, name, quantity,
			unit_price, discount_amount, tax_rate, tax_inclusive, subtotal, tax_amount, total,
			unit_cost, track_inventory
		FROM transaction_items WHERE transaction_id = $1
		ORDER BY ctid`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()

	var items []*entity.TransactionItem
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(
			&it.ID, &it.TransactionID, &it.ItemID, &it.VariantID, &it.Name, &it.Quantity,
			&it.UnitPrice, &it.DiscountAmount, &it.TaxRate, &it.TaxInclusive,
			&it.Subtotal, &it.TaxAmount, &it.Total,
			&it.UnitCost, &it.TrackInventory,
		); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// CreatePayment persiste un pago de la transacción.
func (r *TransactionRepo) CreatePayment(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO payments (id, transaction_id, method, amount, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		payment.ID, payment.TransactionID, payment.Method, payment.Amount,
		nullable(payment.Reference), payment.CreatedAt, nullable(payment.CreatedBy),
	)
	if err != nil {
		return translateErr(fmt.Errorf("create payment: %w", err))
	}
	return nil
}

// ListPayments lista los pagos de una transacción en orden de creación.
func (r *TransactionRepo) ListPayments(ctx context.Context, transactionID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, transaction_id, method, amount, reference, created_at, created_by
		FROM payments WHERE transaction_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		var reference, createdBy *string
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.Method, &p.Amount, &reference, &p.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Reference = deref(reference)
		p.CreatedBy = deref(createdBy)
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
