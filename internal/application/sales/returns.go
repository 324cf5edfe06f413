package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	appledger "github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	domledger "github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// ReturnLineInput una línea a devolver, referida por el ID de la línea
// original de la venta.
type ReturnLineInput struct {
	TransactionItemID string
	Quantity          decimal.Decimal
}

// CreateReturn crea una devolución enlazada a una venta COMPLETED: entra el
// inventario (movimiento RETURN al costo congelado de la línea), sale el
// efectivo de la sesión de caja y la venta original pasa a REFUNDED. La
// venta original nunca se muta en sitio más allá del estado.
func (uc *UseCase) CreateReturn(ctx context.Context, originalID string, lines []ReturnLineInput, actor entity.Actor) (*entity.Transaction, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var ret *entity.Transaction
	err := repository.RunWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(r repository.Repos) error {
		original, err := r.Transactions.GetForUpdate(ctx, originalID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.ErrNotFound
		}
		if original.Status != entity.TxStatusCompleted {
			return domain.ErrInvalidTransition
		}
		if !entity.CanTransition(original.Status, entity.TxStatusRefunded) {
			return domain.ErrInvalidTransition
		}
		originalItems, err := r.Transactions.ListItems(ctx, originalID)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.TransactionItem, len(originalItems))
		for _, it := range originalItems {
			byID[it.ID] = it
		}

		branch, err := uc.branches.GetBranch(ctx, original.BranchID)
		if err != nil || branch == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		number, err := r.Sequences.Next(ctx, branch.ID, branch.Code, domledger.DocKindTransaction, now)
		if err != nil {
			return err
		}

		ret = &entity.Transaction{
			ID:               uuid.New().String(),
			Number:           number,
			Type:             entity.TxTypeReturn,
			Status:           entity.TxStatusCompleted,
			BranchID:         original.BranchID,
			WarehouseID:      original.WarehouseID,
			RegisterID:       original.RegisterID,
			CustomerID:       original.CustomerID,
			RefTransactionID: original.ID,
			CompletedAt:      &now,
			CreatedAt:        now,
			UpdatedAt:        now,
			CreatedBy:        actor.ID,
		}

		var retItems []*entity.TransactionItem
		var subtotal, discount, taxTotal, total decimal.Decimal
		for _, li := range lines {
			orig, ok := byID[li.TransactionItemID]
			if !ok || !li.Quantity.IsPositive() || li.Quantity.GreaterThan(orig.Quantity) {
				return domain.ErrInvalidInput
			}
			// Prorrateo de la línea original por la cantidad devuelta.
			ratio := li.Quantity.Div(orig.Quantity)
			item := &entity.TransactionItem{
				ID:             uuid.New().String(),
				TransactionID:  ret.ID,
				ItemID:         orig.ItemID,
				VariantID:      orig.VariantID,
				Name:           orig.Name,
				Quantity:       li.Quantity,
				UnitPrice:      orig.UnitPrice,
				DiscountAmount: domledger.RoundMoney(orig.DiscountAmount.Mul(ratio)),
				TaxRate:        orig.TaxRate,
				TaxInclusive:   orig.TaxInclusive,
				Subtotal:       domledger.RoundMoney(orig.Subtotal.Mul(ratio)),
				TaxAmount:      domledger.RoundMoney(orig.TaxAmount.Mul(ratio)),
				Total:          domledger.RoundMoney(orig.Total.Mul(ratio)),
				UnitCost:       orig.UnitCost,
				TrackInventory: orig.TrackInventory,
			}
			retItems = append(retItems, item)
			subtotal = subtotal.Add(item.Subtotal)
			discount = discount.Add(item.DiscountAmount)
			taxTotal = taxTotal.Add(item.TaxAmount)
			total = total.Add(item.Total)

			if item.TrackInventory {
				cost := item.UnitCost
				if _, err := uc.stock.ApplyMovementInTx(ctx, r, appledger.MovementInput{
					WarehouseID:   ret.WarehouseID,
					ItemID:        item.ItemID,
					VariantID:     item.VariantID,
					Kind:          entity.MovementKindReturn,
					Quantity:      item.Quantity,
					UnitCost:      &cost,
					ReferenceType: entity.ReferenceTransaction,
					ReferenceID:   ret.ID,
					ActorID:       actor.ID,
				}); err != nil {
					return err
				}
			}
		}
		ret.Subtotal = subtotal
		ret.DiscountAmount = discount
		ret.TaxAmount = taxTotal
		ret.Total = total
		ret.PaidAmount = total

		if err := r.Transactions.Create(ctx, ret); err != nil {
			return err
		}
		for _, item := range retItems {
			if err := r.Transactions.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		// El reembolso sale en efectivo del cajón abierto.
		refund := &entity.Payment{
			ID:            uuid.New().String(),
			TransactionID: ret.ID,
			Method:        entity.PaymentMethodCash,
			Amount:        total,
			Reference:     "reembolso " + original.Number,
			CreatedAt:     now,
			CreatedBy:     actor.ID,
		}
		if err := r.Transactions.CreatePayment(ctx, refund); err != nil {
			return err
		}
		if err := uc.cashbox.ReverseSaleInTx(ctx, r, &entity.Transaction{
			ID:           ret.ID,
			Number:       ret.Number,
			RegisterID:   ret.RegisterID,
			ChangeAmount: decimal.Zero,
		}, []*entity.Payment{refund}, actor.ID); err != nil {
			return err
		}

		beforeOriginal := audit.TransactionSnapshot(original)
		original.Status = entity.TxStatusRefunded
		original.UpdatedAt = now
		if err := r.Transactions.Update(ctx, original); err != nil {
			return err
		}
		if err := uc.auditor.Record(ctx, r.Audit, "transactions", original.ID, entity.AuditActionUpdate, beforeOriginal, audit.TransactionSnapshot(original), actor.ID); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "transactions", ret.ID, entity.AuditActionInsert, nil, audit.TransactionSnapshot(ret), actor.ID)
	})
	if err != nil {
		return nil, err
	}
	uc.postJournal(ctx, ret, actor.ID)
	return ret, nil
}
