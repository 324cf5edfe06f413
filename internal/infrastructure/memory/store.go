// Package memory implementa los repositorios del núcleo sobre mapas en
// memoria, para desarrollo sin base de datos y para las pruebas de los casos
// de uso. El runner serializa las transacciones con un mutex y simula el
// rollback restaurando una instantánea del estado.
package memory

import (
	"context"
	"sync"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// Store guarda todo el estado del núcleo en memoria. Las llaves compuestas
// usan el separador "|".
type Store struct {
	mu sync.Mutex

	inventory      map[string]entity.InventoryRecord
	stockMovements []entity.StockMovement
	transactions   map[string]entity.Transaction
	txItems        map[string][]entity.TransactionItem
	payments       map[string][]entity.Payment
	sessions       map[string]entity.CashSession
	cashMovements  map[string][]entity.CashMovement
	entries        map[string]entity.JournalEntry
	entryBySource  map[string]string
	accounts       map[string]entity.Account
	audits         []entity.AuditRecord
	sequences      map[string]int

	// Datos de referencia (catálogo, clientes, sucursales): solo lectura
	// para el núcleo, con su propio lock porque se consultan también dentro
	// de una transacción en curso.
	refMu      sync.RWMutex
	items      map[string]entity.ItemRef
	customers  map[string]entity.CustomerRef
	branches   map[string]entity.Branch
	registers  map[string]entity.Register
	warehouses map[string]entity.Warehouse
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		inventory:     map[string]entity.InventoryRecord{},
		transactions:  map[string]entity.Transaction{},
		txItems:       map[string][]entity.TransactionItem{},
		payments:      map[string][]entity.Payment{},
		sessions:      map[string]entity.CashSession{},
		cashMovements: map[string][]entity.CashMovement{},
		entries:       map[string]entity.JournalEntry{},
		entryBySource: map[string]string{},
		accounts:      map[string]entity.Account{},
		sequences:     map[string]int{},
		items:         map[string]entity.ItemRef{},
		customers:     map[string]entity.CustomerRef{},
		branches:      map[string]entity.Branch{},
		registers:     map[string]entity.Register{},
		warehouses:    map[string]entity.Warehouse{},
	}
}

// ── Semillas (dev y pruebas) ─────────────────────────────────────────────────

// SeedItem registra un artículo de catálogo.
func (s *Store) SeedItem(item entity.ItemRef) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.items[itemKey(item.ID, item.VariantID)] = item
}

// SeedCustomer registra un cliente.
func (s *Store) SeedCustomer(c entity.CustomerRef) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.customers[c.ID] = c
}

// SeedBranch registra una sucursal con su caja y bodega.
func (s *Store) SeedBranch(b entity.Branch, reg entity.Register, wh entity.Warehouse) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.branches[b.ID] = b
	s.registers[reg.ID] = reg
	s.warehouses[wh.ID] = wh
}

// SeedAccount registra una cuenta del plan contable.
func (s *Store) SeedAccount(a entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Code] = a
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks contra el almacén en memoria. El mutex
// serializa transacciones completas; si fn falla, el estado se restaura a la
// instantánea tomada al inicio (rollback simulado).
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con los repos del almacén bajo el lock.
func (r *TxRunner) Run(_ context.Context, fn func(repos repository.Repos) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapshot := r.store.clone()
	if err := fn(r.store.repos()); err != nil {
		r.store.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) repos() repository.Repos {
	return repository.Repos{
		Inventory:      (*inventoryRepo)(s),
		StockMovements: (*stockMovementRepo)(s),
		Transactions:   (*transactionRepo)(s),
		CashSessions:   (*cashSessionRepo)(s),
		CashMovements:  (*cashMovementRepo)(s),
		Journal:        (*journalRepo)(s),
		Accounts:       (*accountRepo)(s),
		Audit:          (*auditRepo)(s),
		Sequences:      (*sequenceRepo)(s),
	}
}

// clone copia el estado mutable del almacén. Las entidades se guardan por
// valor, así que la copia de los mapas alcanza; solo las líneas de asiento
// llevan slice y se copian aparte.
func (s *Store) clone() *Store {
	c := &Store{
		inventory:      cloneMap(s.inventory),
		stockMovements: cloneSlice(s.stockMovements),
		transactions:   cloneMap(s.transactions),
		txItems:        cloneSliceMap(s.txItems),
		payments:       cloneSliceMap(s.payments),
		sessions:       cloneMap(s.sessions),
		cashMovements:  cloneSliceMap(s.cashMovements),
		entries:        map[string]entity.JournalEntry{},
		entryBySource:  cloneMap(s.entryBySource),
		accounts:       cloneMap(s.accounts),
		audits:         cloneSlice(s.audits),
		sequences:      cloneMap(s.sequences),
	}
	for id, e := range s.entries {
		e.Lines = cloneSlice(e.Lines)
		c.entries[id] = e
	}
	return c
}

func (s *Store) restore(snapshot *Store) {
	s.inventory = snapshot.inventory
	s.stockMovements = snapshot.stockMovements
	s.transactions = snapshot.transactions
	s.txItems = snapshot.txItems
	s.payments = snapshot.payments
	s.sessions = snapshot.sessions
	s.cashMovements = snapshot.cashMovements
	s.entries = snapshot.entries
	s.entryBySource = snapshot.entryBySource
	s.accounts = snapshot.accounts
	s.audits = snapshot.audits
	s.sequences = snapshot.sequences
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlice[V any](s []V) []V {
	out := make([]V, len(s))
	copy(out, s)
	return out
}

func cloneSliceMap[V any](m map[string][]V) map[string][]V {
	out := make(map[string][]V, len(m))
	for k, v := range m {
		out[k] = cloneSlice(v)
	}
	return out
}

func invKey(warehouseID, itemID, variantID string) string {
	return warehouseID + "|" + itemID + "|" + variantID
}

func itemKey(itemID, variantID string) string {
	return itemID + "|" + variantID
}

func sourceKey(sourceType, sourceID string) string {
	return sourceType + "|" + sourceID
}
