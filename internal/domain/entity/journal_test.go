package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(code, debit, credit string) entity.JournalLine {
	return entity.JournalLine{AccountCode: code, Debit: dec(debit), Credit: dec(credit)}
}

func TestJournalEntryValidate_Cuadrado(t *testing.T) {
	e := &entity.JournalEntry{Lines: []entity.JournalLine{
		line("110505", "55000", "0"),
		line("413595", "0", "50000"),
		line("240805", "0", "5000"),
	}}
	assert.NoError(t, e.Validate())
}

func TestJournalEntryValidate_Descuadrado(t *testing.T) {
	e := &entity.JournalEntry{Lines: []entity.JournalLine{
		line("110505", "55000", "0"),
		line("413595", "0", "50000"),
	}}
	assert.ErrorIs(t, e.Validate(), entity.ErrEntryUnbalanced)
}

// Forma inválida: menos de dos líneas, línea con débito y crédito a la vez,
// línea en cero y montos negativos.
func TestJournalEntryValidate_FormaInvalida(t *testing.T) {
	una := &entity.JournalEntry{Lines: []entity.JournalLine{line("110505", "100", "0")}}
	assert.ErrorIs(t, una.Validate(), entity.ErrEntryShape)

	ambos := &entity.JournalEntry{Lines: []entity.JournalLine{
		line("110505", "100", "100"),
		line("413595", "0", "100"),
	}}
	assert.ErrorIs(t, ambos.Validate(), entity.ErrEntryShape)

	enCero := &entity.JournalEntry{Lines: []entity.JournalLine{
		line("110505", "0", "0"),
		line("413595", "0", "100"),
	}}
	assert.ErrorIs(t, enCero.Validate(), entity.ErrEntryShape)

	negativo := &entity.JournalEntry{Lines: []entity.JournalLine{
		line("110505", "-100", "0"),
		line("413595", "0", "-100"),
	}}
	assert.ErrorIs(t, negativo.Validate(), entity.ErrEntryShape)
}
