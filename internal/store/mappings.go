package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

const mappingColumns = `id, user_id, name, type, col_date, col_item, col_amount, col_category, col_payment, col_note, filter_exclude, filter_include, created_at`

func scanMapping(row pgx.Row) (models.ColumnMapping, error) {
	var m models.ColumnMapping
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Type, &m.ColDate, &m.ColItem, &m.ColAmount,
		&m.ColCategory, &m.ColPayment, &m.ColNote, &m.FilterExclude, &m.FilterInclude, &m.CreatedAt)
	return m, err
}

// ListMappings returns the user's mapping profiles, newest first. An empty
// type returns profiles of both ledger types.
func (s *Store) ListMappings(ctx context.Context, userID string, t models.LedgerType) ([]models.ColumnMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM column_mappings WHERE user_id = $1`
	args := []any{userID}
	if t != "" {
		query += ` AND type = $2`
		args = append(args, t)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ColumnMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMapping loads one profile, scoped to its owner. Returns nil when the id
// does not exist or belongs to another user.
func (s *Store) GetMapping(ctx context.Context, userID string, id uuid.UUID) (*models.ColumnMapping, error) {
	m, err := scanMapping(s.pool.QueryRow(ctx,
		`SELECT `+mappingColumns+` FROM column_mappings WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateMapping(ctx context.Context, m models.ColumnMapping) (models.ColumnMapping, error) {
	return scanMapping(s.pool.QueryRow(ctx,
		`INSERT INTO column_mappings
		   (user_id, name, type, col_date, col_item, col_amount, col_category, col_payment, col_note, filter_exclude, filter_include)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+mappingColumns,
		m.UserID, m.Name, m.Type, m.ColDate, m.ColItem, m.ColAmount,
		m.ColCategory, m.ColPayment, m.ColNote, m.FilterExclude, m.FilterInclude))
}

// DeleteMapping removes one profile, scoped to its owner.
func (s *Store) DeleteMapping(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM column_mappings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
