package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// ListClassificationRules returns the rule table for one ledger type,
// ordered by item name for stable display.
func (s *Store) ListClassificationRules(ctx context.Context, t models.LedgerType) ([]models.ClassificationRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, item_name, category, type, created_at
		 FROM classification_rules WHERE type = $1 ORDER BY item_name`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ClassificationRule
	for rows.Next() {
		var r models.ClassificationRule
		if err := rows.Scan(&r.ID, &r.ItemName, &r.Category, &r.Type, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RuleInput is one (item, category) pair from a bulk import.
type RuleInput struct {
	ItemName string
	Category string
}

// CreateClassificationRules inserts the pairs for one type. The rule table
// is a set keyed by (item, category, type), so an existing pair is an
// idempotent no-op rather than an error. Returns how many were new.
func (s *Store) CreateClassificationRules(ctx context.Context, t models.LedgerType, inputs []RuleInput) (int64, error) {
	var created int64
	err := s.runAtomic(ctx, func(tx pgx.Tx) error {
		for _, in := range inputs {
			tag, err := tx.Exec(ctx,
				`INSERT INTO classification_rules (item_name, category, type)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (item_name, category, type) DO NOTHING`,
				in.ItemName, in.Category, t)
			if err != nil {
				return fmt.Errorf("insert rule %q: %w", in.ItemName, err)
			}
			created += tag.RowsAffected()
		}
		return nil
	})
	return created, err
}

func (s *Store) DeleteClassificationRule(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM classification_rules WHERE id = $1`, id)
	return err
}

// ListCategories returns the named category labels for one type. Labels are
// kept independently of whether any rule currently uses them.
func (s *Store) ListCategories(ctx context.Context, t models.LedgerType) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, type, created_at FROM categories WHERE type = $1 ORDER BY name`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a label; an existing (name, type) is a no-op.
func (s *Store) CreateCategory(ctx context.Context, t models.LedgerType, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO categories (name, type) VALUES ($1, $2) ON CONFLICT (name, type) DO NOTHING`,
		name, t)
	return err
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}
