package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pos-ledger/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Entrada sobre stock existente: el nuevo costo es el promedio ponderado de
// lo que había con lo que entra.
func TestWeightedAverageCost_EntradaSobreStockExistente(t *testing.T) {
	// 10 unidades a 1000 + 5 unidades a 1600 = 15 unidades a 1200
	got := ledger.WeightedAverageCost(d("10"), d("1000"), d("5"), d("1600"))
	assert.True(t, d("1200").Equal(got), "esperado 1200, obtenido %s", got)
}

// Primera entrada con stock cero: el costo promedio queda en el costo de la
// entrada.
func TestWeightedAverageCost_PrimeraEntrada(t *testing.T) {
	got := ledger.WeightedAverageCost(decimal.Zero, decimal.Zero, d("8"), d("2500"))
	assert.True(t, d("2500").Equal(got))
}

// Entrada sobre stock negativo (backorder permitido): si la suma queda en
// cero o negativa no hay base para promediar y el costo se reinicia a cero.
func TestWeightedAverageCost_StockNegativo(t *testing.T) {
	got := ledger.WeightedAverageCost(d("-5"), d("1000"), d("5"), d("1200"))
	assert.True(t, got.IsZero(), "sin stock resultante el promedio se reinicia, obtenido %s", got)
}

func TestWeightedAverageCost_CantidadesDecimales(t *testing.T) {
	// 2.5 kg a 4000 + 2.5 kg a 6000 = 5 kg a 5000
	got := ledger.WeightedAverageCost(d("2.5"), d("4000"), d("2.5"), d("6000"))
	assert.True(t, d("5000").Equal(got))
}
