package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// La tabla de transiciones es cerrada: todo lo que no está permitido
// explícitamente está prohibido.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{entity.TxStatusDraft, entity.TxStatusPending, true},
		{entity.TxStatusPending, entity.TxStatusCompleted, true},
		{entity.TxStatusPending, entity.TxStatusCancelled, true},
		{entity.TxStatusCompleted, entity.TxStatusCancelled, true}, // anulación dentro de ventana
		{entity.TxStatusCompleted, entity.TxStatusRefunded, true},  // vía devolución enlazada

		{entity.TxStatusDraft, entity.TxStatusCompleted, false}, // no se salta PENDING
		{entity.TxStatusDraft, entity.TxStatusCancelled, false},
		{entity.TxStatusCancelled, entity.TxStatusCompleted, false}, // terminal
		{entity.TxStatusCancelled, entity.TxStatusPending, false},
		{entity.TxStatusRefunded, entity.TxStatusCompleted, false}, // terminal
		{entity.TxStatusCompleted, entity.TxStatusDraft, false},    // nunca se retrocede
		{entity.TxStatusPending, entity.TxStatusDraft, false},
		{"", entity.TxStatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, entity.CanTransition(c.from, c.to),
			"transición %s -> %s", c.from, c.to)
	}
}

func TestTransaction_IsHeld(t *testing.T) {
	tx := &entity.Transaction{Status: entity.TxStatusDraft}
	assert.False(t, tx.IsHeld())

	now := time.Now()
	tx.HeldAt = &now
	assert.True(t, tx.IsHeld())
}
