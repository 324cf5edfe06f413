// Package sales implementa el Transaction Processor: orquesta una venta o
// devolución de principio a fin — validación del carrito, totales, descuento
// de inventario línea a línea, pagos, atribución a la sesión de caja,
// contabilización y auditoría — como UNA unidad atómica de trabajo. O todo
// queda confirmado, o nada: el estado parcial nunca es observable.
package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/application/cashbox"
	"github.com/tu-usuario/pos-ledger/internal/application/journal"
	appledger "github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	domledger "github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

// Config políticas del procesador de transacciones.
type Config struct {
	// MaxDiscountPct descuento máximo por línea (fracción, ej. 0.20) sin el
	// permiso de anulación de tope.
	MaxDiscountPct decimal.Decimal
	// VoidWindow ventana desde la finalización dentro de la cual se permite
	// anular una venta completada.
	VoidWindow time.Duration
	// MaxRetries reintentos de la operación completa ante ErrConcurrencyConflict.
	MaxRetries int
}

// UseCase procesa ventas, devoluciones, anulaciones y pagos.
type UseCase struct {
	txRunner  repository.TxRunner
	catalog   repository.CatalogProvider
	customers repository.CustomerProvider
	branches  repository.BranchRepository
	stock     *appledger.StockLedgerUseCase
	cashbox   *cashbox.UseCase
	poster    *journal.Poster
	auditor   *audit.Recorder
	cfg       Config
	log       *logger.Logger
}

// NewUseCase construye el procesador.
func NewUseCase(
	txRunner repository.TxRunner,
	catalog repository.CatalogProvider,
	customers repository.CustomerProvider,
	branches repository.BranchRepository,
	stock *appledger.StockLedgerUseCase,
	cashboxUC *cashbox.UseCase,
	poster *journal.Poster,
	auditor *audit.Recorder,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	if cfg.VoidWindow <= 0 {
		cfg.VoidWindow = 24 * time.Hour
	}
	return &UseCase{
		txRunner: txRunner, catalog: catalog, customers: customers, branches: branches,
		stock: stock, cashbox: cashboxUC, poster: poster, auditor: auditor,
		cfg: cfg, log: log,
	}
}

// LineInput una línea del carrito.
type LineInput struct {
	ItemID    string
	VariantID string
	Quantity  decimal.Decimal
	// UnitPrice opcional: cero usa el precio de catálogo.
	UnitPrice decimal.Decimal
	// DiscountAmount descuento en dinero aplicado a la línea.
	DiscountAmount decimal.Decimal
}

// PaymentInput un pago del carrito.
type PaymentInput struct {
	Method    string
	Amount    decimal.Decimal
	Reference string
}

// CreateTransactionInput entrada de CreateTransaction.
type CreateTransactionInput struct {
	BranchID    string
	WarehouseID string
	RegisterID  string
	CustomerID  string
	Lines       []LineInput
	Payments    []PaymentInput
	// SaveAsDraft true guarda solo el carrito (DRAFT, sin stock ni pagos);
	// el documento se termina luego con CompleteTransaction.
	SaveAsDraft bool
	Notes       string
}

// pricedLine línea con totales calculados y referencia de catálogo congelada.
type pricedLine struct {
	input LineInput
	item  *entity.ItemRef
	entry *entity.TransactionItem
}

// CreateTransaction crea una venta. En el camino normal valida, calcula
// totales, descuenta stock por línea, registra pagos, atribuye el efectivo a
// la sesión de caja y completa, todo en una transacción de BD con reintentos
// ante conflictos. Con SaveAsDraft solo persiste el carrito.
func (uc *UseCase) CreateTransaction(ctx context.Context, in CreateTransactionInput, actor entity.Actor) (*entity.Transaction, error) {
	lines, err := uc.validateAndPrice(ctx, in, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx := &entity.Transaction{
		ID:          uuid.New().String(),
		Type:        entity.TxTypeSale,
		Status:      entity.TxStatusDraft,
		BranchID:    in.BranchID,
		WarehouseID: in.WarehouseID,
		RegisterID:  in.RegisterID,
		CustomerID:  in.CustomerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor.ID,
	}
	sumTotals(tx, lines)

	if in.SaveAsDraft {
		err = repository.RunWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(r repository.Repos) error {
			return uc.persistDraftInTx(ctx, r, tx, lines, actor)
		})
		if err != nil {
			return nil, err
		}
		return tx, nil
	}

	payments, err := uc.validatePayments(in.Payments, tx, false)
	if err != nil {
		return nil, err
	}

	err = repository.RunWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(r repository.Repos) error {
		tx.Status = entity.TxStatusDraft
		if err := uc.persistDraftInTx(ctx, r, tx, lines, actor); err != nil {
			return err
		}
		return uc.completeInTx(ctx, r, tx, lines, payments, actor)
	})
	if err != nil {
		return nil, err
	}

	// Contabilización tras el commit, en su propia transacción: una falla
	// contable no revierte la venta ya completada (remediación manual).
	uc.postJournal(ctx, tx, actor.ID)
	return tx, nil
}

// validateAndPrice valida el carrito fuera de la transacción (solo lectura)
// y congela precios, impuestos y costos por línea.
func (uc *UseCase) validateAndPrice(ctx context.Context, in CreateTransactionInput, actor entity.Actor) ([]pricedLine, error) {
	if in.BranchID == "" || in.WarehouseID == "" || in.RegisterID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	branch, err := uc.branches.GetBranch(ctx, in.BranchID)
	if err != nil || branch == nil {
		return nil, domain.ErrNotFound
	}
	if wh, err := uc.branches.GetWarehouse(ctx, in.WarehouseID); err != nil || wh == nil {
		return nil, domain.ErrNotFound
	}
	if reg, err := uc.branches.GetRegister(ctx, in.RegisterID); err != nil || reg == nil {
		return nil, domain.ErrNotFound
	}
	if in.CustomerID != "" && uc.customers != nil {
		if c, err := uc.customers.GetCustomer(ctx, in.CustomerID); err != nil || c == nil {
			return nil, domain.ErrNotFound
		}
	}

	lines := make([]pricedLine, 0, len(in.Lines))
	for _, li := range in.Lines {
		if li.ItemID == "" || li.DiscountAmount.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		item, err := uc.catalog.GetItem(ctx, li.ItemID, li.VariantID)
		if err != nil || item == nil {
			return nil, domain.ErrNotFound
		}
		if !item.IsSellable {
			return nil, domain.ErrInvalidInput
		}
		if !li.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		if !item.AllowDecimalQty && !li.Quantity.Equal(li.Quantity.Truncate(0)) {
			return nil, domain.ErrInvalidInput
		}
		unitPrice := li.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = item.SellingPrice
		}
		if unitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		gross := li.Quantity.Mul(unitPrice)
		if li.DiscountAmount.GreaterThan(gross) {
			return nil, domain.ErrInvalidInput
		}
		// Tope de descuento: se supera solo con el permiso delegado a Auth.
		if gross.IsPositive() && uc.cfg.MaxDiscountPct.IsPositive() {
			pct := li.DiscountAmount.Div(gross)
			if pct.GreaterThan(uc.cfg.MaxDiscountPct) && !actor.Has(entity.PermDiscountOverride) {
				return nil, domain.ErrForbidden
			}
		}
		entry := buildLineEntry(li, item, unitPrice)
		lines = append(lines, pricedLine{input: li, item: item, entry: entry})
	}
	return lines, nil
}

// buildLineEntry calcula los totales de una línea. El impuesto se redondea
// POR LÍNEA a la unidad menor y luego se suma al documento; nunca se
// redondea solo el gran total, para que los totales cuadren con el detalle.
// Para precios tax-inclusive el subtotal se registra neto de impuesto, de
// modo que la identidad total = subtotal - descuento + impuesto se cumpla
// exactamente en ambos esquemas.
func buildLineEntry(li LineInput, item *entity.ItemRef, unitPrice decimal.Decimal) *entity.TransactionItem {
	rate := domledger.NormalizeTaxRate(item.TaxRate)
	grossBeforeDiscount := li.Quantity.Mul(unitPrice)
	gross := grossBeforeDiscount.Sub(li.DiscountAmount)
	base, tax := domledger.LineTax(gross, rate, item.TaxInclusive)

	subtotal := grossBeforeDiscount
	total := gross.Add(tax)
	if item.TaxInclusive {
		subtotal = base.Add(li.DiscountAmount)
		total = gross
	}
	return &entity.TransactionItem{
		ID:             uuid.New().String(),
		ItemID:         item.ID,
		VariantID:      item.VariantID,
		Name:           item.Name,
		Quantity:       li.Quantity,
		UnitPrice:      unitPrice,
		DiscountAmount: li.DiscountAmount,
		TaxRate:        rate,
		TaxInclusive:   item.TaxInclusive,
		Subtotal:       domledger.RoundMoney(subtotal),
		TaxAmount:      tax,
		Total:          domledger.RoundMoney(total),
		UnitCost:       item.CostPrice,
		TrackInventory: item.TrackInventory,
	}
}

func sumTotals(tx *entity.Transaction, lines []pricedLine) {
	var subtotal, discount, taxTotal, total decimal.Decimal
	for _, l := range lines {
		subtotal = subtotal.Add(l.entry.Subtotal)
		discount = discount.Add(l.entry.DiscountAmount)
		taxTotal = taxTotal.Add(l.entry.TaxAmount)
		total = total.Add(l.entry.Total)
	}
	tx.Subtotal = subtotal
	tx.DiscountAmount = discount
	tx.TaxAmount = taxTotal
	tx.Total = total
}

// validatePayments exige sum(pagos) >= total y calcula las vueltas; con
// allowPartial (separado/abono) acepta pago incompleto y el documento queda
// PENDING hasta que AddPayment lo complete. Las vueltas solo pueden salir de
// pagos en efectivo.
func (uc *UseCase) validatePayments(inputs []PaymentInput, tx *entity.Transaction, allowPartial bool) ([]*entity.Payment, error) {
	if len(inputs) == 0 && !allowPartial {
		return nil, domain.ErrInsufficientPayment
	}
	var paid, cashPaid decimal.Decimal
	payments := make([]*entity.Payment, 0, len(inputs))
	now := time.Now()
	for _, pi := range inputs {
		if !pi.Amount.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		switch pi.Method {
		case entity.PaymentMethodCash, entity.PaymentMethodCard, entity.PaymentMethodOther:
		default:
			return nil, domain.ErrInvalidInput
		}
		if pi.Method == entity.PaymentMethodCash {
			cashPaid = cashPaid.Add(pi.Amount)
		}
		paid = paid.Add(pi.Amount)
		payments = append(payments, &entity.Payment{
			ID:        uuid.New().String(),
			Method:    pi.Method,
			Amount:    pi.Amount,
			Reference: pi.Reference,
			CreatedAt: now,
			CreatedBy: tx.CreatedBy,
		})
	}
	if paid.LessThan(tx.Total) {
		if !allowPartial {
			return nil, domain.ErrInsufficientPayment
		}
		tx.PaidAmount = paid
		tx.ChangeAmount = decimal.Zero
		return payments, nil
	}
	change := paid.Sub(tx.Total)
	if change.GreaterThan(cashPaid) {
		// Vueltas mayores que el efectivo recibido: sobrepago con tarjeta.
		return nil, domain.ErrChangeExceedsCash
	}
	tx.PaidAmount = paid
	tx.ChangeAmount = change
	return payments, nil
}

// persistDraftInTx guarda cabecera y líneas en DRAFT.
func (uc *UseCase) persistDraftInTx(ctx context.Context, r repository.Repos, tx *entity.Transaction, lines []pricedLine, actor entity.Actor) error {
	if err := r.Transactions.Create(ctx, tx); err != nil {
		return err
	}
	for _, l := range lines {
		l.entry.TransactionID = tx.ID
		if err := r.Transactions.CreateItem(ctx, l.entry); err != nil {
			return err
		}
	}
	return uc.auditor.Record(ctx, r.Audit, "transactions", tx.ID, entity.AuditActionInsert, nil, audit.TransactionSnapshot(tx), actor.ID)
}

// completeInTx lleva un DRAFT hasta COMPLETED (o lo deja PENDING si el pago
// es parcial): asigna consecutivo, descuenta stock línea a línea, registra
// pagos y atribuye el efectivo a la sesión de caja. Si cualquier línea falla
// (ej. sin stock) toda la transacción de BD se revierte: los movimientos ya
// aplicados del mismo intento desaparecen con el rollback.
func (uc *UseCase) completeInTx(ctx context.Context, r repository.Repos, tx *entity.Transaction, lines []pricedLine, payments []*entity.Payment, actor entity.Actor) error {
	before := audit.TransactionSnapshot(tx)

	branch, err := uc.branches.GetBranch(ctx, tx.BranchID)
	if err != nil || branch == nil {
		return domain.ErrNotFound
	}
	number, err := r.Sequences.Next(ctx, branch.ID, branch.Code, domledger.DocKindTransaction, time.Now())
	if err != nil {
		return err
	}
	tx.Number = number

	if !entity.CanTransition(tx.Status, entity.TxStatusPending) {
		return domain.ErrInvalidTransition
	}
	tx.Status = entity.TxStatusPending

	// Una llamada al libro de inventario por línea con control de stock.
	for _, l := range lines {
		if !l.entry.TrackInventory {
			continue
		}
		if _, err := uc.stock.ApplyMovementInTx(ctx, r, appledger.MovementInput{
			WarehouseID:   tx.WarehouseID,
			ItemID:        l.entry.ItemID,
			VariantID:     l.entry.VariantID,
			Kind:          entity.MovementKindSale,
			Quantity:      l.entry.Quantity.Neg(),
			ReferenceType: entity.ReferenceTransaction,
			ReferenceID:   tx.ID,
			ActorID:       actor.ID,
		}); err != nil {
			return err
		}
	}

	for _, p := range payments {
		p.TransactionID = tx.ID
		if err := r.Transactions.CreatePayment(ctx, p); err != nil {
			return err
		}
	}

	if tx.PaidAmount.GreaterThanOrEqual(tx.Total) {
		if !entity.CanTransition(tx.Status, entity.TxStatusCompleted) {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		tx.Status = entity.TxStatusCompleted
		tx.CompletedAt = &now
		if err := uc.cashbox.AttributeSaleInTx(ctx, r, tx, payments); err != nil {
			return err
		}
	}

	tx.UpdatedAt = time.Now()
	if err := r.Transactions.Update(ctx, tx); err != nil {
		return err
	}
	return uc.auditor.Record(ctx, r.Audit, "transactions", tx.ID, entity.AuditActionUpdate, before, audit.TransactionSnapshot(tx), actor.ID)
}

// postJournal dispara la contabilización de una venta completada, fuera de
// la transacción de la venta.
func (uc *UseCase) postJournal(ctx context.Context, tx *entity.Transaction, actorID string) {
	if tx.Status != entity.TxStatusCompleted {
		return
	}
	items, payments, err := uc.loadDetail(ctx, tx.ID)
	if err != nil {
		uc.poster.LogPostingResult(tx.ID, err)
		return
	}
	_, err = uc.poster.Post(ctx, tx, items, payments, actorID)
	uc.poster.LogPostingResult(tx.ID, err)
}

func (uc *UseCase) loadDetail(ctx context.Context, txID string) ([]*entity.TransactionItem, []*entity.Payment, error) {
	var (
		items    []*entity.TransactionItem
		payments []*entity.Payment
	)
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		items, err = r.Transactions.ListItems(ctx, txID)
		if err != nil {
			return err
		}
		payments, err = r.Transactions.ListPayments(ctx, txID)
		return err
	})
	return items, payments, err
}

// GetTransaction devuelve la transacción con sus líneas y pagos.
func (uc *UseCase) GetTransaction(ctx context.Context, transactionID string) (*entity.Transaction, []*entity.TransactionItem, []*entity.Payment, error) {
	var tx *entity.Transaction
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		tx, err = r.Transactions.GetByID(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	items, payments, err := uc.loadDetail(ctx, transactionID)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, items, payments, nil
}

// AddPayment aplica un pago a una transacción PENDING y la completa cuando
// lo pagado alcanza el total.
func (uc *UseCase) AddPayment(ctx context.Context, transactionID string, in PaymentInput, actor entity.Actor) (*entity.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var tx *entity.Transaction
	err := repository.RunWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(r repository.Repos) error {
		var err error
		tx, err = r.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		if tx.Status != entity.TxStatusPending {
			return domain.ErrInvalidTransition
		}
		before := audit.TransactionSnapshot(tx)
		payment := &entity.Payment{
			ID:            uuid.New().String(),
			TransactionID: tx.ID,
			Method:        in.Method,
			Amount:        in.Amount,
			Reference:     in.Reference,
			CreatedAt:     time.Now(),
			CreatedBy:     actor.ID,
		}
		if err := r.Transactions.CreatePayment(ctx, payment); err != nil {
			return err
		}
		tx.PaidAmount = tx.PaidAmount.Add(in.Amount)
		if tx.PaidAmount.GreaterThanOrEqual(tx.Total) {
			if !entity.CanTransition(tx.Status, entity.TxStatusCompleted) {
				return domain.ErrInvalidTransition
			}
			payments, err := r.Transactions.ListPayments(ctx, tx.ID)
			if err != nil {
				return err
			}
			// La misma regla de CreateTransaction: las vueltas solo pueden
			// salir de pagos en efectivo del conjunto acumulado.
			change := tx.PaidAmount.Sub(tx.Total)
			var cashPaid decimal.Decimal
			for _, p := range payments {
				if p.Method == entity.PaymentMethodCash {
					cashPaid = cashPaid.Add(p.Amount)
				}
			}
			if change.GreaterThan(cashPaid) {
				return domain.ErrChangeExceedsCash
			}
			now := time.Now()
			tx.Status = entity.TxStatusCompleted
			tx.CompletedAt = &now
			tx.ChangeAmount = change
			if err := uc.cashbox.AttributeSaleInTx(ctx, r, tx, payments); err != nil {
				return err
			}
		}
		tx.UpdatedAt = time.Now()
		if err := r.Transactions.Update(ctx, tx); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "transactions", tx.ID, entity.AuditActionUpdate, before, audit.TransactionSnapshot(tx), actor.ID)
	})
	if err != nil {
		return nil, err
	}
	uc.postJournal(ctx, tx, actor.ID)
	return tx, nil
}

// VoidTransaction anula una venta COMPLETED dentro de la ventana
// configurada: movimientos de inventario compensatorios por cada línea,
// reversión de la atribución de caja, asiento de reversión y estado
// CANCELLED. La fila nunca se borra.
func (uc *UseCase) VoidTransaction(ctx context.Context, transactionID, reason string, actor entity.Actor) (*entity.Transaction, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if !actor.Has(entity.PermVoidTransaction) {
		return nil, domain.ErrForbidden
	}
	var tx *entity.Transaction
	err := repository.RunWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(r repository.Repos) error {
		var err error
		tx, err = r.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		if tx.Status != entity.TxStatusCompleted {
			return domain.ErrInvalidTransition
		}
		if tx.CompletedAt != nil && time.Since(*tx.CompletedAt) > uc.cfg.VoidWindow {
			return domain.ErrVoidWindowExpired
		}
		if !entity.CanTransition(tx.Status, entity.TxStatusCancelled) {
			return domain.ErrInvalidTransition
		}
		before := audit.TransactionSnapshot(tx)

		items, err := r.Transactions.ListItems(ctx, tx.ID)
		if err != nil {
			return err
		}
		// Compensación: un movimiento nuevo con la cantidad negada por cada
		// línea, referenciando la venta original. El libro nunca edita ni
		// borra movimientos pasados.
		for _, it := range items {
			if !it.TrackInventory {
				continue
			}
			cost := it.UnitCost
			if _, err := uc.stock.ApplyMovementInTx(ctx, r, appledger.MovementInput{
				WarehouseID:   tx.WarehouseID,
				ItemID:        it.ItemID,
				VariantID:     it.VariantID,
				Kind:          entity.MovementKindSale,
				Quantity:      it.Quantity,
				UnitCost:      &cost,
				ReferenceType: entity.ReferenceTransaction,
				ReferenceID:   tx.ID,
				Notes:         "anulación: " + reason,
				ActorID:       actor.ID,
			}); err != nil {
				return err
			}
		}

		payments, err := r.Transactions.ListPayments(ctx, tx.ID)
		if err != nil {
			return err
		}
		if err := uc.cashbox.ReverseSaleInTx(ctx, r, tx, payments, actor.ID); err != nil {
			return err
		}

		now := time.Now()
		tx.Status = entity.TxStatusCancelled
		tx.VoidReason = reason
		tx.VoidedAt = &now
		tx.VoidedBy = actor.ID
		tx.UpdatedAt = now
		if err := r.Transactions.Update(ctx, tx); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "transactions", tx.ID, entity.AuditActionUpdate, before, audit.TransactionSnapshot(tx), actor.ID)
	})
	if err != nil {
		return nil, err
	}
	// Reversión contable fuera de la transacción de la anulación, igual que
	// la contabilización original.
	if _, err := uc.poster.ReverseBySource(ctx, entity.EntrySourceTransaction, tx.ID, actor.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.log.Error().Err(err).Str("transaction_id", tx.ID).Msg("falla revirtiendo el asiento de la venta anulada; requiere remediación manual")
	}
	return tx, nil
}
