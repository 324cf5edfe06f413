package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pos-ledger/internal/domain/ledger"
)

// Precio tax-exclusive: la base es el bruto y el impuesto se suma encima,
// redondeado por línea a la unidad menor.
func TestLineTax_Exclusivo(t *testing.T) {
	base, tax := ledger.LineTax(d("50000"), d("0.19"), false)
	assert.True(t, d("50000").Equal(base))
	assert.True(t, d("9500").Equal(tax))
}

// Precio tax-inclusive: el bruto ya contiene el impuesto; se extrae la base.
func TestLineTax_Inclusivo(t *testing.T) {
	base, tax := ledger.LineTax(d("119000"), d("0.19"), true)
	assert.True(t, d("100000").Equal(base), "base obtenida %s", base)
	assert.True(t, d("19000").Equal(tax), "impuesto obtenido %s", tax)
	// La identidad base + impuesto == bruto se conserva tras el redondeo.
	assert.True(t, base.Add(tax).Equal(d("119000")))
}

// Caso donde la división no cierra en la unidad menor: la base se deriva por
// resta del impuesto redondeado, nunca con un segundo redondeo propio, para
// que base + impuesto == bruto exacto.
func TestLineTax_InclusivoDivisionInexacta(t *testing.T) {
	base, tax := ledger.LineTax(d("200.01"), d("1"), true)
	// 200.01 / 2 = 100.005; impuesto half-up = 100.01; base = 100.00
	assert.True(t, d("100.01").Equal(tax), "impuesto obtenido %s", tax)
	assert.True(t, d("100.00").Equal(base), "base obtenida %s", base)
	assert.True(t, base.Add(tax).Equal(d("200.01")))

	base, tax = ledger.LineTax(d("99.99"), d("0.19"), true)
	// 99.99 / 1.19 = 84.0252...; impuesto = round(15.9647...) = 15.96
	assert.True(t, d("15.96").Equal(tax), "impuesto obtenido %s", tax)
	assert.True(t, d("84.03").Equal(base), "base obtenida %s", base)
	assert.True(t, base.Add(tax).Equal(d("99.99")))
}

func TestLineTax_TarifaCero(t *testing.T) {
	base, tax := ledger.LineTax(d("12345.67"), decimal.Zero, false)
	assert.True(t, d("12345.67").Equal(base))
	assert.True(t, tax.IsZero())
}

// El redondeo del impuesto es por línea, half-up a 2 decimales.
func TestLineTax_RedondeoPorLinea(t *testing.T) {
	_, tax := ledger.LineTax(d("333"), d("0.19"), false)
	// 333 * 0.19 = 63.27 exacto; 335 * 0.19 = 63.65
	assert.True(t, d("63.27").Equal(tax))

	_, tax = ledger.LineTax(d("333.33"), d("0.19"), false)
	// 333.33 * 0.19 = 63.3327 -> 63.33
	assert.True(t, d("63.33").Equal(tax), "impuesto obtenido %s", tax)
}

func TestRoundMoney_HalfUp(t *testing.T) {
	assert.True(t, d("10.13").Equal(ledger.RoundMoney(d("10.125"))))
	assert.True(t, d("10.12").Equal(ledger.RoundMoney(d("10.124"))))
}

// El catálogo histórico guarda tarifas como porcentaje (19) o fracción
// (0.19); ambas deben normalizar a la fracción.
func TestNormalizeTaxRate(t *testing.T) {
	assert.True(t, d("0.19").Equal(ledger.NormalizeTaxRate(d("19"))))
	assert.True(t, d("0.19").Equal(ledger.NormalizeTaxRate(d("0.19"))))
	assert.True(t, d("0.05").Equal(ledger.NormalizeTaxRate(d("5"))))
	assert.True(t, decimal.Zero.Equal(ledger.NormalizeTaxRate(decimal.Zero)))
	// 1 (100%) expresado como fracción se queda tal cual.
	assert.True(t, d("1").Equal(ledger.NormalizeTaxRate(d("1"))))
}
