package sqlite

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/punto-venta/internal/domain"
)

// mapError traduce errores del driver a errores de dominio. op da contexto al mensaje.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %s: %v", domain.ErrBusy, op, err)
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%w: %s: %v", domain.ErrIntegrity, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
