package dto

// Límites de paginación de listados.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación por query string (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize aplica el límite por defecto y recorta valores fuera de rango.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse eco de la página servida; Count es el número de elementos devueltos.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse cuerpo de error de la API. Code es estable (VALIDATION, NOT_FOUND, BUSY...).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
