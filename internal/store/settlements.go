package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

const settlementColumns = `id, start_date, end_date, reported_cash_sales, manager_rent_support, updated_at`

func scanSettlement(row pgx.Row) (models.Settlement, error) {
	var st models.Settlement
	err := row.Scan(&st.ID, &st.StartDate, &st.EndDate, &st.ReportedCashSales, &st.ManagerRentSupport, &st.UpdatedAt)
	return st, err
}

// GetSettlement returns the manual inputs keyed by the exact date pair, or
// nil when that pair has never been saved. Periods do not range-overlap:
// adjacent boundaries are distinct records.
func (s *Store) GetSettlement(ctx context.Context, start, end time.Time) (*models.Settlement, error) {
	st, err := scanSettlement(s.pool.QueryRow(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE start_date = $1 AND end_date = $2`,
		start, end))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpsertSettlement saves the manual inputs for the exact date pair.
func (s *Store) UpsertSettlement(ctx context.Context, start, end time.Time, reportedCashSales, managerRentSupport int64) (*models.Settlement, error) {
	st, err := scanSettlement(s.pool.QueryRow(ctx,
		`INSERT INTO settlements (start_date, end_date, reported_cash_sales, manager_rent_support)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (start_date, end_date) DO UPDATE
		   SET reported_cash_sales = EXCLUDED.reported_cash_sales,
		       manager_rent_support = EXCLUDED.manager_rent_support,
		       updated_at = now()
		 RETURNING `+settlementColumns,
		start, end, reportedCashSales, managerRentSupport))
	if err != nil {
		return nil, err
	}
	return &st, nil
}
