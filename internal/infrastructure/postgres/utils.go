package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/punto-venta/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNotNullViolation     = "23502"
	codeRestrictViolation    = "23001"
)

// mapError traduce errores de PostgreSQL a errores de dominio. op da contexto al mensaje.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %s: %v", domain.ErrBusy, op, err)
		case codeUniqueViolation, codeForeignKeyViolation, codeCheckViolation, codeNotNullViolation, codeRestrictViolation:
			return fmt.Errorf("%w: %s: %v", domain.ErrIntegrity, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullIfEmpty devuelve nil para cadena vacía (columna NULL).
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
