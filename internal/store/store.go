// Package store holds the hand-written pgx queries behind the services.
// Every multi-statement mutation goes through runAtomic so the choice of
// transaction semantics lives in exactly one place.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// runAtomic executes fn inside a single transaction, rolling back on error.
func (s *Store) runAtomic(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// advisoryLockKey gives each ledger type its own advisory lock so two
// concurrent uploads of one type serialize on the replace step while the
// other type stays unaffected.
func advisoryLockKey(t models.LedgerType) int64 {
	const base = int64(0x6a616e67) // "jang"
	if t == models.LedgerPurchase {
		return base + 2
	}
	return base + 1
}

// likePattern turns a raw keyword into a %keyword% pattern with LIKE
// metacharacters escaped, for use with ILIKE ANY($1).
func likePattern(keyword string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(keyword)
	return "%" + escaped + "%"
}

func likePatterns(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, likePattern(k))
	}
	return out
}
