package sales

import (
	"context"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// HoldTransaction aparca un carrito DRAFT y reserva el stock de sus líneas.
// El hold no es un estado del ciclo de vida: es un atributo del borrador, de
// modo que la tabla de transiciones permanece cerrada.
func (uc *UseCase) HoldTransaction(ctx context.Context, transactionID string, actor entity.Actor) (*entity.Transaction, error) {
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
		if tx.Status != entity.TxStatusDraft || tx.IsHeld() {
			return domain.ErrInvalidTransition
		}
		before := audit.TransactionSnapshot(tx)

		items, err := r.Transactions.ListItems(ctx, tx.ID)
		if err != nil {
			return err
		}
		// Reservar aparta del disponible sin mover la cantidad en mano.
		for _, it := range items {
			if !it.TrackInventory {
				continue
			}
			if err := uc.stock.ReserveInTx(ctx, r, tx.WarehouseID, it.ItemID, it.VariantID, it.Quantity, actor.ID); err != nil {
				return err
			}
		}

		now := time.Now()
		tx.HeldAt = &now
		tx.UpdatedAt = now
		if err := r.Transactions.Update(ctx, tx); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "transactions", tx.ID, entity.AuditActionUpdate, before, audit.TransactionSnapshot(tx), actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ReleaseHold libera la reserva de un carrito aparcado y lo devuelve a
// borrador activo.
func (uc *UseCase) ReleaseHold(ctx context.Context, transactionID string, actor entity.Actor) (*entity.Transaction, error) {
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
		if tx.Status != entity.TxStatusDraft || !tx.IsHeld() {
			return domain.ErrInvalidTransition
		}
		before := audit.TransactionSnapshot(tx)
		if err := uc.releaseReservationsInTx(ctx, r, tx, actor); err != nil {
			return err
		}
		tx.HeldAt = nil
		tx.UpdatedAt = time.Now()
		if err := r.Transactions.Update(ctx, tx); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "transactions", tx.ID, entity.AuditActionUpdate, before, audit.TransactionSnapshot(tx), actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (uc *UseCase) releaseReservationsInTx(ctx context.Context, r repository.Repos, tx *entity.Transaction, actor entity.Actor) error {
	items, err := r.Transactions.ListItems(ctx, tx.ID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if !it.TrackInventory {
			continue
		}
		if err := uc.stock.ReleaseReservationInTx(ctx, r, tx.WarehouseID, it.ItemID, it.VariantID, it.Quantity, actor.ID); err != nil {
			return err
		}
	}
	return nil
}

// CompleteTransaction termina un borrador (aparcado o no): libera la reserva
// si existía, asigna consecutivo, descuenta stock, registra pagos y completa.
func (uc *UseCase) CompleteTransaction(ctx context.Context, transactionID string, paymentInputs []PaymentInput, actor entity.Actor) (*entity.Transaction, error) {
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
		if tx.Status != entity.TxStatusDraft {
			return domain.ErrInvalidTransition
		}
		if tx.IsHeld() {
			if err := uc.releaseReservationsInTx(ctx, r, tx, actor); err != nil {
				return err
			}
			tx.HeldAt = nil
		}
		payments, err := uc.validatePayments(paymentInputs, tx, true)
		if err != nil {
			return err
		}
		items, err := r.Transactions.ListItems(ctx, tx.ID)
		if err != nil {
			return err
		}
		lines := make([]pricedLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, pricedLine{entry: it})
		}
		return uc.completeInTx(ctx, r, tx, lines, payments, actor)
	})
	if err != nil {
		return nil, err
	}
	uc.postJournal(ctx, tx, actor.ID)
	return tx, nil
}
