package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// Los repos atados al almacén se usan solo dentro de TxRunner.Run, que ya
// sostiene el lock: no toman el mutex de nuevo.

// ── Inventario ───────────────────────────────────────────────────────────────

type inventoryRepo Store

func (r *inventoryRepo) Get(_ context.Context, warehouseID, itemID, variantID string) (*entity.InventoryRecord, error) {
	rec, ok := r.inventory[invKey(warehouseID, itemID, variantID)]
	if !ok {
		return &entity.InventoryRecord{
			WarehouseID:      warehouseID,
			ItemID:           itemID,
			VariantID:        variantID,
			Quantity:         decimal.Zero,
			ReservedQuantity: decimal.Zero,
			AverageCost:      decimal.Zero,
		}, nil
	}
	return &rec, nil
}

func (r *inventoryRepo) GetForUpdate(ctx context.Context, warehouseID, itemID, variantID string) (*entity.InventoryRecord, error) {
	// el lock del runner ya serializa
	return r.Get(ctx, warehouseID, itemID, variantID)
}

func (r *inventoryRepo) Upsert(_ context.Context, record *entity.InventoryRecord) error {
	record.UpdatedAt = time.Now().UTC()
	r.inventory[invKey(record.WarehouseID, record.ItemID, record.VariantID)] = *record
	return nil
}

func (r *inventoryRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var records []*entity.InventoryRecord
	for _, rec := range r.inventory {
		if rec.WarehouseID == warehouseID {
			rec := rec
			records = append(records, &rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ItemID != records[j].ItemID {
			return records[i].ItemID < records[j].ItemID
		}
		return records[i].VariantID < records[j].VariantID
	})
	return paginate(records, limit, offset), nil
}

// ── Libro de inventario ──────────────────────────────────────────────────────

type stockMovementRepo Store

func (r *stockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	r.stockMovements = append(r.stockMovements, *movement)
	return nil
}

func (r *stockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for i := range r.stockMovements {
		if r.stockMovements[i].ID == id {
			m := r.stockMovements[i]
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stockMovementRepo) ListByKey(_ context.Context, warehouseID, itemID, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var movements []*entity.StockMovement
	for i := range r.stockMovements {
		m := r.stockMovements[i]
		if m.WarehouseID != warehouseID || m.ItemID != itemID || m.VariantID != variantID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !m.CreatedAt.Before(*to) {
			continue
		}
		movements = append(movements, &m)
	}
	return paginate(movements, limit, offset), nil
}

func (r *stockMovementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	var movements []*entity.StockMovement
	for i := range r.stockMovements {
		m := r.stockMovements[i]
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			movements = append(movements, &m)
		}
	}
	return movements, nil
}

// ── Transacciones ────────────────────────────────────────────────────────────

type transactionRepo Store

func (r *transactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if _, exists := r.transactions[tx.ID]; exists {
		return domain.ErrDuplicate
	}
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	r.transactions[tx.ID] = *tx
	return nil
}

func (r *transactionRepo) Update(_ context.Context, tx *entity.Transaction) error {
	if _, exists := r.transactions[tx.ID]; !exists {
		return domain.ErrNotFound
	}
	tx.UpdatedAt = time.Now().UTC()
	r.transactions[tx.ID] = *tx
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	tx, ok := r.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tx, nil
}

func (r *transactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *transactionRepo) CreateItem(_ context.Context, item *entity.TransactionItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.txItems[item.TransactionID] = append(r.txItems[item.TransactionID], *item)
	return nil
}

func (r *transactionRepo) ListItems(_ context.Context, transactionID string) ([]*entity.TransactionItem, error) {
	items := r.txItems[transactionID]
	out := make([]*entity.TransactionItem, 0, len(items))
	for i := range items {
		it := items[i]
		out = append(out, &it)
	}
	return out, nil
}

func (r *transactionRepo) CreatePayment(_ context.Context, payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	r.payments[payment.TransactionID] = append(r.payments[payment.TransactionID], *payment)
	return nil
}

func (r *transactionRepo) ListPayments(_ context.Context, transactionID string) ([]*entity.Payment, error) {
	payments := r.payments[transactionID]
	out := make([]*entity.Payment, 0, len(payments))
	for i := range payments {
		p := payments[i]
		out = append(out, &p)
	}
	return out, nil
}

// ── Caja ─────────────────────────────────────────────────────────────────────

type cashSessionRepo Store

func (r *cashSessionRepo) Create(_ context.Context, session *entity.CashSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	for _, s := range r.sessions {
		if s.RegisterID == session.RegisterID && s.Status == entity.SessionStatusOpen {
			return domain.ErrSessionAlreadyOpen
		}
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *cashSessionRepo) Update(_ context.Context, session *entity.CashSession) error {
	if _, exists := r.sessions[session.ID]; !exists {
		return domain.ErrNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *cashSessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *cashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.GetByID(ctx, id)
}

func (r *cashSessionRepo) FindOpenByRegister(_ context.Context, registerID string) (*entity.CashSession, error) {
	for _, s := range r.sessions {
		if s.RegisterID == registerID && s.Status == entity.SessionStatusOpen {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

type cashMovementRepo Store

func (r *cashMovementRepo) Create(_ context.Context, movement *entity.CashMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	r.cashMovements[movement.SessionID] = append(r.cashMovements[movement.SessionID], *movement)
	return nil
}

func (r *cashMovementRepo) ListBySession(_ context.Context, sessionID string) ([]*entity.CashMovement, error) {
	movements := r.cashMovements[sessionID]
	out := make([]*entity.CashMovement, 0, len(movements))
	for i := range movements {
		m := movements[i]
		out = append(out, &m)
	}
	return out, nil
}

// ── Asientos contables ───────────────────────────────────────────────────────

type journalRepo Store

func (r *journalRepo) CreateEntry(_ context.Context, entry *entity.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	key := sourceKey(entry.SourceType, entry.SourceID)
	if _, exists := r.entryBySource[key]; exists {
		return domain.ErrAlreadyPosted
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	for i := range entry.Lines {
		if entry.Lines[i].ID == "" {
			entry.Lines[i].ID = uuid.New().String()
		}
		entry.Lines[i].EntryID = entry.ID
	}
	stored := *entry
	stored.Lines = cloneSlice(entry.Lines)
	r.entries[entry.ID] = stored
	r.entryBySource[key] = entry.ID
	return nil
}

func (r *journalRepo) MarkPosted(_ context.Context, entry *entity.JournalEntry) error {
	stored, ok := r.entries[entry.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != entity.EntryStatusDraft {
		return domain.ErrInvalidTransition
	}
	now := time.Now().UTC()
	stored.Status = entity.EntryStatusPosted
	stored.PostedAt = &now
	r.entries[entry.ID] = stored
	entry.Status = entity.EntryStatusPosted
	entry.PostedAt = &now
	return nil
}

func (r *journalRepo) MarkReversed(_ context.Context, entryID, _ string) error {
	stored, ok := r.entries[entryID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != entity.EntryStatusPosted {
		return domain.ErrInvalidTransition
	}
	stored.Status = entity.EntryStatusReversed
	r.entries[entryID] = stored
	return nil
}

func (r *journalRepo) GetByID(_ context.Context, id string) (*entity.JournalEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Lines = cloneSlice(e.Lines)
	return &e, nil
}

func (r *journalRepo) GetBySource(ctx context.Context, sourceType, sourceID string) (*entity.JournalEntry, error) {
	id, ok := r.entryBySource[sourceKey(sourceType, sourceID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

type accountRepo Store

func (r *accountRepo) GetByCode(_ context.Context, code string) (*entity.Account, error) {
	a, ok := r.accounts[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepo) List(_ context.Context) ([]*entity.Account, error) {
	out := make([]*entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ── Auditoría ────────────────────────────────────────────────────────────────

type auditRepo Store

func (r *auditRepo) Create(_ context.Context, record *entity.AuditRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.audits = append(r.audits, *record)
	return nil
}

func (r *auditRepo) ListByRecord(_ context.Context, tableName, recordID string, limit, offset int) ([]*entity.AuditRecord, error) {
	var records []*entity.AuditRecord
	for i := len(r.audits) - 1; i >= 0; i-- {
		rec := r.audits[i]
		if rec.TableName == tableName && rec.RecordID == recordID {
			records = append(records, &rec)
		}
	}
	return paginate(records, limit, offset), nil
}

// ── Consecutivos ─────────────────────────────────────────────────────────────

type sequenceRepo Store

func (r *sequenceRepo) Next(_ context.Context, branchID, branchCode, documentKind string, date time.Time) (string, error) {
	key := branchID + "|" + documentKind + "|" + date.Format("060102")
	r.sequences[key]++
	return ledger.FormatDocumentNumber(branchCode, documentKind, date, r.sequences[key]), nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func paginate[V any](s []V, limit, offset int) []V {
	if offset >= len(s) {
		return nil
	}
	s = s[offset:]
	if limit > 0 && limit < len(s) {
		s = s[:limit]
	}
	return s
}

var _ repository.InventoryRepository = (*inventoryRepo)(nil)
var _ repository.StockMovementRepository = (*stockMovementRepo)(nil)
var _ repository.TransactionRepository = (*transactionRepo)(nil)
var _ repository.CashSessionRepository = (*cashSessionRepo)(nil)
var _ repository.CashMovementRepository = (*cashMovementRepo)(nil)
var _ repository.JournalRepository = (*journalRepo)(nil)
var _ repository.AccountRepository = (*accountRepo)(nil)
var _ repository.AuditRepository = (*auditRepo)(nil)
var _ repository.SequenceRepository = (*sequenceRepo)(nil)
