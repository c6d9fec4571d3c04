// Package sqlite implementa los repositorios sobre un archivo SQLite local compartido
// por varias terminales (database/sql + mattn/go-sqlite3).
//
// Toda transacción de escritura arranca con BEGIN IMMEDIATE (_txlock=immediate): toma el
// lock de escritura antes de leer el contador de folios, así dos ventas nunca leen el
// mismo consecutivo. Las lecturas no abren transacción.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/punto-venta/pkg/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Options configuración de la conexión.
type Options struct {
	Path        string
	BusyTimeout time.Duration // espera máxima por el lock de escritura
}

// Querier abstrae *sql.DB y *sql.Tx para que los repos funcionen dentro o fuera de una transacción.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DSN arma el connection string con los pragmas del almacén: WAL, synchronous FULL,
// foreign keys, busy timeout y BEGIN IMMEDIATE en cada transacción.
func DSN(opts Options) string {
	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Set("_busy_timeout", strconv.FormatInt(busy.Milliseconds(), 10))
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "FULL")
	q.Set("_foreign_keys", "1")
	return "file:" + opts.Path + "?" + q.Encode()
}

// Open abre (o crea) el archivo y verifica la conexión.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	db, err := sql.Open("sqlite3", DSN(opts))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", opts.Path, err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", opts.Path, err)
	}
	return db, nil
}

// Migrate aplica el esquema embebido.
func Migrate(ctx context.Context, db *sql.DB) (*migrate.Result, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.Up(ctx, db, migrate.DialectSQLite, sub)
}
