package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// Esperado = apertura + ventas en efectivo + entradas - salidas. Las ventas
// con tarjeta no tocan el cajón.
func TestCashSessionExpected(t *testing.T) {
	s := &entity.CashSession{
		OpeningAmount: dec("100000"),
		CashSales:     dec("250000"),
		CardSales:     dec("999999"), // no participa
		CashIn:        dec("30000"),
		CashOut:       dec("20000"),
	}
	assert.True(t, dec("360000").Equal(s.Expected()), "esperado obtenido %s", s.Expected())
}

func TestCashSessionExpected_SinMovimientos(t *testing.T) {
	s := &entity.CashSession{OpeningAmount: dec("50000")}
	assert.True(t, dec("50000").Equal(s.Expected()))
}
