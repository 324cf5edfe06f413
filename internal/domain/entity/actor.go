package entity

// Permisos que el núcleo consulta al colaborador de autenticación.
const (
	PermDiscountOverride = "discount:override"
	PermVoidTransaction  = "transaction:void"
)

// Actor es el usuario autenticado que ejecuta una operación. El núcleo lo
// recibe ya resuelto (colaborador Auth); solo estampa el ID y consulta
// permisos para descuentos y anulaciones.
type Actor struct {
	ID          string
	Permissions []string
}

// Has indica si el actor tiene el permiso dado.
func (a Actor) Has(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
