package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.FolioRepository = (*FolioRepo)(nil)

// FolioRepo contador de folios. Se usa con la pgx.Tx de TxRunner.
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
	err := r.q.QueryRow(ctx,
		`SELECT name, prefix, width, last_number, updated_at FROM folio_sequences WHERE name = $1`, name,
	).Scan(&seq.Name, &seq.Prefix, &seq.Width, &seq.LastNumber, &seq.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get folio sequence", err)
	}
	return &seq, nil
}

// Save inserta o actualiza el contador.
func (r *FolioRepo) Save(ctx context.Context, seq *entity.FolioSequence) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO folio_sequences (name, prefix, width, last_number, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			prefix      = EXCLUDED.prefix,
			width       = EXCLUDED.width,
			last_number = EXCLUDED.last_number,
			updated_at  = EXCLUDED.updated_at`,
		seq.Name, seq.Prefix, seq.Width, seq.LastNumber, seq.UpdatedAt,
	)
	return mapError("save folio sequence", err)
}
