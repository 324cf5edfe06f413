// Package journal convierte documentos completados en asientos de partida
// doble contra el plan de cuentas. El mapeo de cuentas es configurable: qué
// cuenta de ingresos, impuesto, costo o inventario recibe cada concepto se
// decide por configuración, nunca con códigos quemados en el código.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

// AccountMapping códigos de cuenta por concepto (configurable por despliegue).
type AccountMapping struct {
	Cash            string // caja general
	CardReceivable  string // pasarela/datafono por cobrar
	OtherReceivable string
	Revenue         string // ingresos por ventas
	TaxPayable      string // IVA por pagar
	COGS            string // costo de ventas
	Inventory       string // inventario (activo)
}

// Validate verifica que el mapeo tenga todos los códigos requeridos.
func (m AccountMapping) Validate() error {
	for _, code := range []string{m.Cash, m.CardReceivable, m.OtherReceivable, m.Revenue, m.TaxPayable, m.COGS, m.Inventory} {
		if code == "" {
			return fmt.Errorf("mapeo de cuentas incompleto: %w", domain.ErrInvalidInput)
		}
	}
	return nil
}

// Poster contabiliza transacciones completadas. Idempotente por documento
// fuente: la unicidad (source_type, source_id) en la base convierte el
// segundo intento en domain.ErrAlreadyPosted, que los callers tratan como
// éxito (la postcondición deseada ya se cumple).
type Poster struct {
	txRunner repository.TxRunner
	mapping  AccountMapping
	auditor  *audit.Recorder
	log      *logger.Logger
}

// NewPoster construye el caso de uso.
func NewPoster(txRunner repository.TxRunner, mapping AccountMapping, auditor *audit.Recorder, log *logger.Logger) *Poster {
	return &Poster{txRunner: txRunner, mapping: mapping, auditor: auditor, log: log}
}

// Post construye y contabiliza el asiento de una transacción completada.
// Corre en su propia transacción de BD, separada de la venta: una falla de
// validación contable NO revierte la venta ya completada, se reporta para
// remediación manual.
func (p *Poster) Post(ctx context.Context, tx *entity.Transaction, items []*entity.TransactionItem, payments []*entity.Payment, actorID string) (*entity.JournalEntry, error) {
	if err := p.mapping.Validate(); err != nil {
		return nil, err
	}
	lines, err := p.buildLines(tx, items, payments)
	if err != nil {
		return nil, err
	}
	entry := &entity.JournalEntry{
		ID:          uuid.New().String(),
		SourceType:  entity.EntrySourceTransaction,
		SourceID:    tx.ID,
		Date:        tx.CreatedAt,
		Description: fmt.Sprintf("Venta %s", tx.Number),
		Status:      entity.EntryStatusDraft,
		Lines:       lines,
		CreatedAt:   time.Now(),
		CreatedBy:   actorID,
	}
	if tx.Type == entity.TxTypeReturn {
		entry.Description = fmt.Sprintf("Devolución %s", tx.Number)
	}
	if err := p.post(ctx, entry, actorID); err != nil {
		return nil, err
	}
	return entry, nil
}

// post valida el cuadre, persiste cabecera y líneas y marca POSTED, todo en
// una transacción.
func (p *Poster) post(ctx context.Context, entry *entity.JournalEntry, actorID string) error {
	var debits, credits decimal.Decimal
	for _, l := range entry.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	entry.TotalDebit = debits
	entry.TotalCredit = credits
	if err := entry.Validate(); err != nil {
		if errors.Is(err, entity.ErrEntryUnbalanced) {
			return fmt.Errorf("documento %s/%s: %w", entry.SourceType, entry.SourceID, domain.ErrUnbalancedEntry)
		}
		return err
	}
	return p.txRunner.Run(ctx, func(r repository.Repos) error {
		if err := r.Journal.CreateEntry(ctx, entry); err != nil {
			return err
		}
		now := time.Now()
		entry.Status = entity.EntryStatusPosted
		entry.PostedAt = &now
		if err := r.Journal.MarkPosted(ctx, entry); err != nil {
			return err
		}
		return p.auditor.Record(ctx, r.Audit, "journal_entries", entry.ID, entity.AuditActionInsert, nil, audit.JournalEntrySnapshot(entry), actorID)
	})
}

// buildLines arma las líneas del asiento de una venta:
//
//	Débito  caja / por cobrar (por método de pago, neto de vueltas)
//	Crédito ingresos (total - impuesto)
//	Crédito IVA por pagar
//	Débito  costo de ventas    (líneas con inventario, a costo promedio)
//	Crédito inventario
//
// Para devoluciones las direcciones se invierten.
func (p *Poster) buildLines(tx *entity.Transaction, items []*entity.TransactionItem, payments []*entity.Payment) ([]entity.JournalLine, error) {
	var lines []entity.JournalLine
	isReturn := tx.Type == entity.TxTypeReturn

	add := func(code, desc string, amount decimal.Decimal, debit bool) {
		if amount.IsZero() {
			return
		}
		if isReturn {
			debit = !debit
		}
		l := entity.JournalLine{ID: uuid.New().String(), AccountCode: code, Description: desc}
		if debit {
			l.Debit = amount
		} else {
			l.Credit = amount
		}
		lines = append(lines, l)
	}

	// Pagos: lo retenido por método debe sumar el total. Las vueltas salen
	// del efectivo recibido.
	change := tx.ChangeAmount
	for _, pay := range payments {
		amount := pay.Amount
		if pay.Method == entity.PaymentMethodCash && change.IsPositive() {
			amount = amount.Sub(change)
			change = decimal.Zero
		}
		switch pay.Method {
		case entity.PaymentMethodCash:
			add(p.mapping.Cash, "Efectivo recibido", amount, true)
		case entity.PaymentMethodCard:
			add(p.mapping.CardReceivable, "Pago con tarjeta", amount, true)
		default:
			add(p.mapping.OtherReceivable, "Otro medio de pago", amount, true)
		}
	}

	revenue := tx.Total.Sub(tx.TaxAmount)
	add(p.mapping.Revenue, "Ingresos por venta", revenue, false)
	add(p.mapping.TaxPayable, "IVA por pagar", tx.TaxAmount, false)

	// Costo de ventas al costo promedio congelado en cada línea.
	var cogs decimal.Decimal
	for _, it := range items {
		if !it.TrackInventory {
			continue
		}
		cogs = cogs.Add(it.Quantity.Mul(it.UnitCost))
	}
	add(p.mapping.COGS, "Costo de ventas", cogs, true)
	add(p.mapping.Inventory, "Salida de inventario", cogs, false)

	if len(lines) < 2 {
		return nil, domain.ErrInvalidInput
	}
	return lines, nil
}

// ReverseBySource contabiliza el asiento de reversión del documento fuente
// (anulaciones). El asiento original queda REVERSED, nunca editado.
func (p *Poster) ReverseBySource(ctx context.Context, sourceType, sourceID, actorID string) (*entity.JournalEntry, error) {
	var reversal *entity.JournalEntry
	err := p.txRunner.Run(ctx, func(r repository.Repos) error {
		original, err := r.Journal.GetBySource(ctx, sourceType, sourceID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.ErrNotFound
		}
		if original.Status != entity.EntryStatusPosted {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		reversal = &entity.JournalEntry{
			ID:          uuid.New().String(),
			SourceType:  entity.EntrySourceJournalEntry,
			SourceID:    original.ID,
			Date:        now,
			Description: "Reversión: " + original.Description,
			Status:      entity.EntryStatusDraft,
			ReversesID:  original.ID,
			CreatedAt:   now,
			CreatedBy:   actorID,
		}
		for _, l := range original.Lines {
			reversal.Lines = append(reversal.Lines, entity.JournalLine{
				ID:          uuid.New().String(),
				AccountCode: l.AccountCode,
				Description: l.Description,
				Debit:       l.Credit,
				Credit:      l.Debit,
			})
		}
		reversal.TotalDebit = original.TotalCredit
		reversal.TotalCredit = original.TotalDebit
		if err := reversal.Validate(); err != nil {
			return err
		}
		if err := r.Journal.CreateEntry(ctx, reversal); err != nil {
			return err
		}
		reversal.Status = entity.EntryStatusPosted
		reversal.PostedAt = &now
		if err := r.Journal.MarkPosted(ctx, reversal); err != nil {
			return err
		}
		if err := r.Journal.MarkReversed(ctx, original.ID, reversal.ID); err != nil {
			return err
		}
		beforeSnap := audit.JournalEntrySnapshot(original)
		original.Status = entity.EntryStatusReversed
		if err := p.auditor.Record(ctx, r.Audit, "journal_entries", original.ID, entity.AuditActionUpdate, beforeSnap, audit.JournalEntrySnapshot(original), actorID); err != nil {
			return err
		}
		return p.auditor.Record(ctx, r.Audit, "journal_entries", reversal.ID, entity.AuditActionInsert, nil, audit.JournalEntrySnapshot(reversal), actorID)
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}

// LogPostingResult registra el resultado de una contabilización disparada
// tras el commit de la venta. ErrAlreadyPosted es benigno (reintento u
// operación duplicada) y se trata como éxito; cualquier otra falla se
// reporta para remediación manual sin tocar la venta.
func (p *Poster) LogPostingResult(txID string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyPosted):
		p.log.Debug().Str("transaction_id", txID).Msg("asiento ya contabilizado, se ignora")
	default:
		p.log.Error().Err(err).Str("transaction_id", txID).Msg("falla contabilizando la venta; requiere remediación manual")
	}
}
