package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.FolioRepository = (*FolioRepo)(nil)

// FolioRepo contador de folios. Solo se construye con la *sql.Tx de TxRunner.
type FolioRepo struct {
	q Querier
}

// NewFolioRepository construye el adaptador.
func NewFolioRepository(q Querier) *FolioRepo {
	return &FolioRepo{q: q}
}

// Get lee el contador de la serie; (nil, nil) si no existe.
func (r *FolioRepo) Get(ctx context.Context, name string) (*entity.FolioSequence, error) {
	var seq entity.FolioSequence
	err := r.q.QueryRowContext(ctx,
		`SELECT name, prefix, width, last_number, updated_at FROM folio_sequences WHERE name = ?`, name,
	).Scan(&seq.Name, &seq.Prefix, &seq.Width, &seq.LastNumber, &seq.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get folio sequence", err)
	}
	return &seq, nil
}

// Save inserta o actualiza el contador.
func (r *FolioRepo) Save(ctx context.Context, seq *entity.FolioSequence) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO folio_sequences (name, prefix, width, last_number, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			prefix      = excluded.prefix,
			width       = excluded.width,
			last_number = excluded.last_number,
			updated_at  = excluded.updated_at`,
		seq.Name, seq.Prefix, seq.Width, seq.LastNumber, seq.UpdatedAt.UTC(),
	)
	return mapError("save folio sequence", err)
}
