package dto

// Las consultas del kardex y del inventario pueden crecer mucho en tiendas
// con catálogos grandes; los listados siempre paginan.

// PageRequest parámetros de paginación de los listados (kardex, inventario).
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=200"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage normaliza la página: 50 filas por defecto, tope en 200.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse eco de la página servida en la respuesta.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo uniforme de error HTTP: código estable para el punto
// de venta y mensaje legible para el operador.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
