package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrForbidden           = errors.New("acceso denegado")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrSessionAlreadyOpen  = errors.New("la caja ya tiene una sesión abierta")
	ErrSessionClosed       = errors.New("la sesión de caja está cerrada")
	ErrAlreadyPosted       = errors.New("el documento ya fue contabilizado")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia; reintentar la operación completa")
	ErrUnbalancedEntry     = errors.New("asiento descuadrado: débitos y créditos no coinciden")
	ErrVoidWindowExpired   = errors.New("la ventana de anulación expiró")
	ErrInsufficientPayment = errors.New("pago insuficiente para el total de la venta")
	ErrChangeExceedsCash   = errors.New("las vueltas superan el efectivo recibido")
)
