package entity

// CustomerRef referencia de solo lectura a un cliente (colaborador de identidad).
// El núcleo nunca muta clientes; solo los asocia a transacciones por ID.
type CustomerRef struct {
	ID       string
	Document string
	Name     string
	Email    string
}
