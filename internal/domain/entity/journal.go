package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cuenta del plan contable.
const (
	AccountTypeAsset     = "ASSET"
	AccountTypeLiability = "LIABILITY"
	AccountTypeEquity    = "EQUITY"
	AccountTypeIncome    = "INCOME"
	AccountTypeExpense   = "EXPENSE"
)

// Account es una cuenta del plan contable contra la que se asientan líneas.
type Account struct {
	ID        string
	Code      string // ej. "110505" caja, "413595" ingresos
	Name      string
	Type      string
	CreatedAt time.Time
}

// Estados del asiento contable.
const (
	EntryStatusDraft    = "DRAFT"
	EntryStatusPosted   = "POSTED"
	EntryStatusReversed = "REVERSED"
)

// Tipos de documento fuente de un asiento.
const (
	EntrySourceTransaction  = "TRANSACTION"
	EntrySourceCashSession  = "CASH_SESSION"
	EntrySourceJournalEntry = "JOURNAL_ENTRY" // asiento de reversión
)

// JournalEntry es un asiento de partida doble. Una vez POSTED es inmutable:
// las correcciones se hacen con un asiento de reversión nuevo, nunca editando.
// La unicidad (SourceType, SourceID) garantiza idempotencia por documento.
type JournalEntry struct {
	ID          string
	SourceType  string
	SourceID    string
	Date        time.Time
	Description string
	Status      string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	ReversesID  string // ID del asiento que este asiento reversa, si aplica
	Lines       []JournalLine
	CreatedAt   time.Time
	CreatedBy   string
	PostedAt    *time.Time
}

// JournalLine es una línea del asiento: exactamente uno de Debit/Credit > 0.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountCode string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Validate verifica que el asiento esté cuadrado antes de marcarse POSTED:
// al menos dos líneas, cada línea con débito o crédito (no ambos, no cero)
// y suma de débitos igual a suma de créditos.
func (e *JournalEntry) Validate() error {
	if len(e.Lines) < 2 {
		return ErrEntryShape
	}
	var debits, credits decimal.Decimal
	for i := range e.Lines {
		l := &e.Lines[i]
		debitSet := l.Debit.GreaterThan(decimal.Zero)
		creditSet := l.Credit.GreaterThan(decimal.Zero)
		if debitSet == creditSet { // ambos o ninguno
			return ErrEntryShape
		}
		if l.Debit.LessThan(decimal.Zero) || l.Credit.LessThan(decimal.Zero) {
			return ErrEntryShape
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	if !debits.Equal(credits) {
		return ErrEntryUnbalanced
	}
	return nil
}

// Errores de forma del asiento (el caso descuadrado se mapea a
// domain.ErrUnbalancedEntry en la capa de aplicación).
var (
	ErrEntryShape      = entryError("línea de asiento inválida: se requiere débito o crédito positivo")
	ErrEntryUnbalanced = entryError("asiento descuadrado")
)

type entryError string

func (e entryError) Error() string { return string(e) }
