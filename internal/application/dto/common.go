package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest limit/offset de los listados (historial, log de auditoría, dead letters).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la página: limit fuera de rango cae en el valor por defecto
// o en MaxPageLimit y un offset negativo pasa a 0.
func (p *PageRequest) DefaultPage() {
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

// PageResponse página aplicada y total de filas que cumplen el filtro.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP; Code es estable para los clientes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
