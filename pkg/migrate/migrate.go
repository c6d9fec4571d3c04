package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Dialectos soportados.
const (
	DialectPostgres = goose.DialectPostgres
	DialectSQLite   = goose.DialectSQLite3
)

// Result resumen de una corrida de migraciones.
type Result struct {
	Applied []int64 // versiones aplicadas en esta corrida
	Version int64   // versión final de la base
}

// Up aplica las migraciones pendientes de fsys (archivos NNNNN_nombre.sql en la raíz).
// Usa un goose.Provider por llamada: no toca el estado global de goose.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) (*Result, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	out := &Result{}
	for _, r := range results {
		if r.Source != nil {
			out.Applied = append(out.Applied, r.Source.Version)
		}
	}
	out.Version, err = provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose version: %w", err)
	}
	return out, nil
}
