package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// ListFilters returns the persisted keyword filters for one ledger type.
func (s *Store) ListFilters(ctx context.Context, t models.LedgerType) ([]models.ExcelFilter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, keyword, type, is_include, created_at
		 FROM excel_filters WHERE type = $1 ORDER BY keyword`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ExcelFilter
	for rows.Next() {
		var f models.ExcelFilter
		if err := rows.Scan(&f.ID, &f.Keyword, &f.Type, &f.IsInclude, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFilter adds a keyword filter. The filter table is a set, so an
// existing (keyword, type, polarity) is an idempotent no-op.
func (s *Store) CreateFilter(ctx context.Context, t models.LedgerType, keyword string, isInclude bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO excel_filters (keyword, type, is_include) VALUES ($1, $2, $3)
		 ON CONFLICT (keyword, type, is_include) DO NOTHING`,
		keyword, t, isInclude)
	return err
}

func (s *Store) DeleteFilter(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM excel_filters WHERE id = $1`, id)
	return err
}
