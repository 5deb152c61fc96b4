package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

const ledgerColumns = `id, type, date, item_name, amount, category, payment_method, note, confirmed, created_at, updated_at`

func scanLedgerRow(row pgx.Row) (models.LedgerRow, error) {
	var r models.LedgerRow
	err := row.Scan(&r.ID, &r.Type, &r.Date, &r.ItemName, &r.Amount, &r.Category,
		&r.PaymentMethod, &r.Note, &r.Confirmed, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func collectLedgerRows(rows pgx.Rows) ([]models.LedgerRow, error) {
	defer rows.Close()
	var out []models.LedgerRow
	for rows.Next() {
		r, err := scanLedgerRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceUnconfirmed atomically swaps the unconfirmed batch of one ledger
// type: the per-type advisory lock serializes racing uploads, the delete and
// the bulk insert share one transaction, so a concurrent confirm sees either
// the old batch or the new one, never a mix.
func (s *Store) ReplaceUnconfirmed(ctx context.Context, t models.LedgerType, rows []models.StagedRow) (int64, error) {
	var inserted int64
	err := s.runAtomic(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(t)); err != nil {
			return fmt.Errorf("acquire upload lock: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM ledger_rows WHERE type = $1 AND confirmed = FALSE`, t); err != nil {
			return fmt.Errorf("clear unconfirmed rows: %w", err)
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"ledger_rows"},
			[]string{"type", "date", "item_name", "amount", "category", "payment_method", "note", "confirmed"},
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				r := rows[i]
				return []any{string(t), r.Date, r.ItemName, r.Amount, r.Category, r.PaymentMethod, r.Note, false}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("insert staged rows: %w", err)
		}
		inserted = n
		return nil
	})
	return inserted, err
}

// keywordFields lists the columns a keyword search touches. Payment method
// only exists on sales rows; purchase searches must not match on it.
func keywordFields(t models.LedgerType) string {
	fields := `item_name ILIKE ANY($2) OR category ILIKE ANY($2) OR note ILIKE ANY($2)`
	if t == models.LedgerSales {
		fields += ` OR payment_method ILIKE ANY($2)`
	}
	return fields
}

func keywordMatchClause(t models.LedgerType) string {
	return ` AND (` + keywordFields(t) + `)`
}

// FindUnconfirmed returns unconfirmed rows of the type, optionally narrowed
// to rows whose searchable fields contain any of the keywords.
func (s *Store) FindUnconfirmed(ctx context.Context, t models.LedgerType, keywords []string) ([]models.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_rows WHERE type = $1 AND confirmed = FALSE`
	args := []any{t}
	if len(keywords) > 0 {
		query += keywordMatchClause(t)
		args = append(args, likePatterns(keywords))
	}
	query += ` ORDER BY date, created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectLedgerRows(rows)
}

// FindConfirmedOnDates returns confirmed rows whose date equals any of dates.
func (s *Store) FindConfirmedOnDates(ctx context.Context, t models.LedgerType, dates []time.Time) ([]models.LedgerRow, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_rows WHERE type = $1 AND confirmed = TRUE AND date = ANY($2)`,
		t, dates)
	if err != nil {
		return nil, err
	}
	return collectLedgerRows(rows)
}

// PromoteAndDiscard deletes the discard set and confirms the promote set in
// one transaction.
func (s *Store) PromoteAndDiscard(ctx context.Context, t models.LedgerType, promote, discard []uuid.UUID) error {
	return s.runAtomic(ctx, func(tx pgx.Tx) error {
		if len(discard) > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM ledger_rows WHERE type = $1 AND id = ANY($2)`, t, discard); err != nil {
				return fmt.Errorf("discard duplicates: %w", err)
			}
		}
		if len(promote) > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE ledger_rows SET confirmed = TRUE, updated_at = now() WHERE type = $1 AND id = ANY($2)`,
				t, promote); err != nil {
				return fmt.Errorf("promote rows: %w", err)
			}
		}
		return nil
	})
}

// ListUnconfirmed pages through unconfirmed rows, newest first, optionally
// narrowed by keywords.
func (s *Store) ListUnconfirmed(ctx context.Context, t models.LedgerType, keywords []string, offset, limit int) ([]models.LedgerRow, int64, error) {
	where := ` FROM ledger_rows WHERE type = $1 AND confirmed = FALSE`
	args := []any{t}
	if len(keywords) > 0 {
		where += keywordMatchClause(t)
		args = append(args, likePatterns(keywords))
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s%s ORDER BY date DESC, created_at DESC OFFSET %d LIMIT %d`,
		ledgerColumns, where, offset, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectLedgerRows(rows)
	return out, total, err
}

// InsertRow creates one manual ledger row.
func (s *Store) InsertRow(ctx context.Context, r models.LedgerRow) (models.LedgerRow, error) {
	return scanLedgerRow(s.pool.QueryRow(ctx,
		`INSERT INTO ledger_rows (type, date, item_name, amount, category, payment_method, note, confirmed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+ledgerColumns,
		r.Type, r.Date, r.ItemName, r.Amount, r.Category, r.PaymentMethod, r.Note, r.Confirmed))
}

// RowPatch carries the optional fields of a row update; nil fields keep
// their stored value.
type RowPatch struct {
	Date          *time.Time
	ItemName      *string
	Amount        *int64
	Category      *string
	PaymentMethod *string
	Note          *string
	Confirmed     *bool
}

// UpdateRow applies the patch to one row.
func (s *Store) UpdateRow(ctx context.Context, t models.LedgerType, id uuid.UUID, p RowPatch) (models.LedgerRow, error) {
	return scanLedgerRow(s.pool.QueryRow(ctx,
		`UPDATE ledger_rows SET
			date           = COALESCE($3, date),
			item_name      = COALESCE($4, item_name),
			amount         = COALESCE($5, amount),
			category       = COALESCE($6, category),
			payment_method = COALESCE($7, payment_method),
			note           = COALESCE($8, note),
			confirmed      = COALESCE($9, confirmed),
			updated_at     = now()
		 WHERE type = $1 AND id = $2
		 RETURNING `+ledgerColumns,
		t, id, p.Date, p.ItemName, p.Amount, p.Category, p.PaymentMethod, p.Note, p.Confirmed))
}

// DeleteRows deletes rows of the type by id and reports how many went away.
func (s *Store) DeleteRows(ctx context.Context, t models.LedgerType, ids []uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM ledger_rows WHERE type = $1 AND id = ANY($2)`, t, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteRange deletes rows of the type dated within [from, to]. With
// onlyConfirmed it leaves the unconfirmed working batch alone.
func (s *Store) DeleteRange(ctx context.Context, t models.LedgerType, from, to time.Time, onlyConfirmed bool) (int64, error) {
	query := `DELETE FROM ledger_rows WHERE type = $1 AND date >= $2 AND date <= $3`
	if onlyConfirmed {
		query += ` AND confirmed = TRUE`
	}
	tag, err := s.pool.Exec(ctx, query, t, from, to)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExcept deletes every unconfirmed row of the type that matches none
// of the keywords.
func (s *Store) DeleteExcept(ctx context.Context, t models.LedgerType, keywords []string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM ledger_rows WHERE type = $1 AND confirmed = FALSE AND NOT (`+keywordFields(t)+`)`,
		t, likePatterns(keywords))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DayTotal is the confirmed amount and row count of one ledger type on one
// calendar day.
type DayTotal struct {
	Date   time.Time
	Amount int64
	Count  int64
}

// DailyTotals groups confirmed rows of the type by calendar day over
// [from, to]. Days without rows are absent; callers fill the gaps.
func (s *Store) DailyTotals(ctx context.Context, t models.LedgerType, from, to time.Time) ([]DayTotal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date_trunc('day', date) AS day, COALESCE(SUM(amount), 0), COUNT(*)
		 FROM ledger_rows
		 WHERE type = $1 AND confirmed = TRUE AND date >= $2 AND date <= $3
		 GROUP BY day ORDER BY day`,
		t, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Date, &d.Amount, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FindConfirmedInRange returns confirmed rows of the type dated within
// [from, to], largest amounts first.
func (s *Store) FindConfirmedInRange(ctx context.Context, t models.LedgerType, from, to time.Time) ([]models.LedgerRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_rows
		 WHERE type = $1 AND confirmed = TRUE AND date >= $2 AND date <= $3
		 ORDER BY amount DESC, created_at`,
		t, from, to)
	if err != nil {
		return nil, err
	}
	return collectLedgerRows(rows)
}

// ItemTotal aggregates confirmed rows sharing one item name and category.
type ItemTotal struct {
	ItemName    string `json:"item_name"`
	Category    string `json:"category"`
	TotalAmount int64  `json:"total_amount"`
	Count       int64  `json:"count"`
}

// ItemBreakdown groups confirmed rows of the type by item and category over
// [from, to], optionally narrowed to one category or to items matching any
// keyword. Largest totals first.
func (s *Store) ItemBreakdown(ctx context.Context, t models.LedgerType, from, to time.Time, category string, keywords []string) ([]ItemTotal, error) {
	query := `SELECT item_name, category, COALESCE(SUM(amount), 0), COUNT(*)
		 FROM ledger_rows
		 WHERE type = $1 AND confirmed = TRUE AND date >= $2 AND date <= $3`
	args := []any{t, from, to}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if len(keywords) > 0 {
		args = append(args, likePatterns(keywords))
		query += fmt.Sprintf(` AND item_name ILIKE ANY($%d)`, len(args))
	}
	query += ` GROUP BY item_name, category ORDER BY 3 DESC, item_name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemTotal
	for rows.Next() {
		var it ItemTotal
		if err := rows.Scan(&it.ItemName, &it.Category, &it.TotalAmount, &it.Count); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SalesTotals aggregates confirmed sales over [from, to], splitting out the
// cash portion by the payment-method marker.
func (s *Store) SalesTotals(ctx context.Context, from, to time.Time) (total, cash int64, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0),
		        COALESCE(SUM(amount) FILTER (WHERE payment_method LIKE '%' || $3 || '%'), 0)
		 FROM ledger_rows
		 WHERE type = $4 AND confirmed = TRUE AND date >= $1 AND date <= $2`,
		from, to, "현금", models.LedgerSales).Scan(&total, &cash)
	return total, cash, err
}

// PurchaseTotals aggregates confirmed purchases over [from, to] along with
// the labor and urgent-labor category sums the VAT base needs.
func (s *Store) PurchaseTotals(ctx context.Context, from, to time.Time) (total, labor, urgentLabor int64, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0),
		        COALESCE(SUM(amount) FILTER (WHERE category LIKE '%' || $3 || '%'), 0),
		        COALESCE(SUM(amount) FILTER (WHERE category LIKE '%' || $4 || '%'), 0)
		 FROM ledger_rows
		 WHERE type = $5 AND confirmed = TRUE AND date >= $1 AND date <= $2`,
		from, to, "인건비", "인건비(급구)", models.LedgerPurchase).Scan(&total, &labor, &urgentLabor)
	return total, labor, urgentLabor, err
}
