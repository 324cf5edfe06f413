package entity

import "time"

// Branch representa una sucursal del negocio. Code se usa como prefijo
// de los consecutivos de documentos (ej. "BOG01-250829-0001").
type Branch struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Register representa una caja registradora física dentro de una sucursal.
// Cada caja tiene a lo sumo una sesión de caja abierta a la vez.
type Register struct {
	ID        string
	BranchID  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
