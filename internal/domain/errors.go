package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los adaptadores los envuelven con fmt.Errorf("%w: ...") para dar contexto accionable.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	// ErrBusy contención transitoria de escritura sobre el almacén compartido; el caller puede reintentar.
	ErrBusy = errors.New("almacén ocupado, intente de nuevo")
	// ErrIntegrity violación de constraint (folio duplicado, FK); indica un bug, no se reintenta.
	ErrIntegrity = errors.New("violación de integridad")
)
