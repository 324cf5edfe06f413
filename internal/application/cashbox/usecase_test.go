package cashbox_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/application/cashbox"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

const (
	registerID = "register-1"
	actorID    = "cajero-1"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCashboxEnv(t *testing.T) (*memory.Store, *cashbox.UseCase) {
	t.Helper()
	store := memory.NewStore()
	uc := cashbox.NewUseCase(memory.NewTxRunner(store), audit.NewRecorder(), nil, 3, logger.Nop())
	return store, uc
}

func TestOpen_RegistraApertura(t *testing.T) {
	_, uc := newCashboxEnv(t)
	ctx := context.Background()

	session, err := uc.Open(ctx, registerID, d("100000"), actorID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusOpen, session.Status)
	assert.True(t, d("100000").Equal(session.OpeningAmount))

	_, movements, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.CashMovementOpening, movements[0].Type)
	assert.True(t, d("100000").Equal(movements[0].Amount))
}

// A lo sumo una sesión abierta por caja.
func TestOpen_SegundaSesionRechazada(t *testing.T) {
	_, uc := newCashboxEnv(t)
	ctx := context.Background()

	_, err := uc.Open(ctx, registerID, d("100000"), actorID)
	require.NoError(t, err)

	_, err = uc.Open(ctx, registerID, d("50000"), actorID)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	// Otra caja sí puede abrir la suya.
	_, err = uc.Open(ctx, "register-2", d("50000"), actorID)
	assert.NoError(t, err)
}

func TestOpen_EntradasInvalidas(t *testing.T) {
	_, uc := newCashboxEnv(t)
	ctx := context.Background()

	_, err := uc.Open(ctx, "", d("100000"), actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Open(ctx, registerID, d("-1"), actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordMovement_ActualizaAcumulados(t *testing.T) {
	_, uc := newCashboxEnv(t)
	ctx := context.Background()
	session, err := uc.Open(ctx, registerID, d("100000"), actorID)
	require.NoError(t, err)

	_, err = uc.RecordMovement(ctx, session.ID, entity.CashMovementDeposit, d("30000"), "base adicional", actorID)
	require.NoError(t, err)
	_, err = uc.RecordMovement(ctx, session.ID, entity.CashMovementExpense, d("20000"), "papelería", actorID)
	require.NoError(t, err)
	// Ajuste negativo: salida.
	_, err = uc.RecordMovement(ctx, session.ID, entity.CashMovementAdjustment, d("-5000"), "faltante detectado", actorID)
	require.NoError(t, err)

	got, movements, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, d("30000").Equal(got.CashIn))
	assert.True(t, d("25000").Equal(got.CashOut))
	// esperado = 100000 + 0 + 30000 - 25000
	assert.True(t, d("105000").Equal(got.Expected()), "esperado %s", got.Expected())
	assert.Len(t, movements, 4, "apertura + tres movimientos manuales")
}

func TestRecordMovement_TipoYMontoInvalidos(t *testing.T) {
	_, uc := newCashboxEnv(t)
	ctx := context.Background()
	session, err := uc.Open(ctx, registerID, d("100000"), actorID)
	require.NoError(t, err)

	_, err = uc.RecordMovement(ctx, session.ID, "SALE", d("1000"), "", actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "los movimientos de venta no se registran a mano")

	_, err = uc.RecordMovement(ctx, session.ID, entity.CashMovementExpense, d("-1000"), "", actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordMovement(ctx, session.ID, entity.CashMovementAdjustment, decimal.Zero, "", actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Cierre cuadrado: esperado = apertura + ventas en efectivo + entradas -
// salidas; diferencia cero.
func TestClose_ArqueoCuadrado(t *testing.T) {
	store, uc := newCashboxEnv(t)
	ctx := context.Background()
	session, err := uc.Open(ctx, registerID, d("100000"), actorID)
	require.NoError(t, err)

	// Venta en efectivo atribuida por el procesador de transacciones.
	attributeSale(t, store, uc, "250000")
	_, err = uc.RecordMovement(ctx, session.ID, entity.CashMovementExpense, d("20000"), "domicilio", actorID)
	require.NoError(t, err)

	closed, err := uc.Close(ctx, session.ID, d("330000"), "", actorID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusClosed, closed.Status)
	assert.True(t, d("330000").Equal(closed.ExpectedAmount), "esperado %s", closed.ExpectedAmount)
	assert.True(t, closed.Difference.IsZero())
	require.NotNil(t, closed.ClosedAt)
}

// El descuadre se registra como hecho, nunca se rechaza.
func TestClose_DescuadreSeRegistra(t *testing.T) {
	_, uc := newCashboxEnv(t)
	ctx := context.Background()
	session, err := uc.Open(ctx, registerID, d("100000"), actorID)
	require.NoError(t, err)

	closed, err := uc.Close(ctx, session.ID, d("95000"), "faltan 5000", actorID)
	require.NoError(t, err)
	assert.True(t, d("-5000").Equal(closed.Difference), "diferencia %s", closed.Difference)
	assert.Equal(t, "faltan 5000", closed.Notes)
}

// El cierre no se repite.
func TestClose_DobleCierre(t *testing.T) {
	_, uc := newCashboxEnv(t)
	ctx := context.Background()
	session, err := uc.Open(ctx, registerID, d("100000"), actorID)
	require.NoError(t, err)

	_, err = uc.Close(ctx, session.ID, d("100000"), "", actorID)
	require.NoError(t, err)

	_, err = uc.Close(ctx, session.ID, d("100000"), "", actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Tampoco se aceptan movimientos sobre la sesión cerrada.
	_, err = uc.RecordMovement(ctx, session.ID, entity.CashMovementExpense, d("1000"), "", actorID)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

// attributeSale simula la atribución de una venta en efectivo dentro de una
// transacción, como lo hace el procesador de transacciones.
func attributeSale(t *testing.T, store *memory.Store, uc *cashbox.UseCase, cashAmount string) {
	t.Helper()
	tx := &entity.Transaction{
		ID:         "tx-prueba",
		Number:     "BOG01-250829-0001",
		RegisterID: registerID,
		CreatedBy:  actorID,
	}
	payments := []*entity.Payment{{
		ID:     "pago-prueba",
		Method: entity.PaymentMethodCash,
		Amount: d(cashAmount),
	}}
	err := memory.NewTxRunner(store).Run(context.Background(), func(r repository.Repos) error {
		return uc.AttributeSaleInTx(context.Background(), r, tx, payments)
	})
	require.NoError(t, err)
}
