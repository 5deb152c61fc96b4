package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// Substrings that partition confirmed rows for the settlement computation.
const (
	cashPaymentMarker   = "현금"
	laborCategory       = "인건비"
	urgentLaborCategory = "인건비(급구)"
)

// SettlementStore is the slice of persistence the calculator needs.
type SettlementStore interface {
	// SalesTotals returns the confirmed sales sum and the cash portion
	// (payment method containing the cash marker) over [from, to].
	SalesTotals(ctx context.Context, from, to time.Time) (total, cash int64, err error)
	// PurchaseTotals returns the confirmed purchase sum plus the labor and
	// urgent-labor sums (category substring matches) over [from, to].
	PurchaseTotals(ctx context.Context, from, to time.Time) (total, labor, urgentLabor int64, err error)
	// GetSettlement returns the manual inputs stored for the exact date pair,
	// or nil when the pair has never been saved.
	GetSettlement(ctx context.Context, start, end time.Time) (*models.Settlement, error)
	UpsertSettlement(ctx context.Context, start, end time.Time, reportedCashSales, managerRentSupport int64) (*models.Settlement, error)
}

// SettlementCalculator aggregates confirmed rows over a period into the
// profit/VAT report, applying the manual adjustments saved for that period.
type SettlementCalculator struct {
	store SettlementStore
	log   *slog.Logger
}

func NewSettlementCalculator(store SettlementStore, log *slog.Logger) *SettlementCalculator {
	return &SettlementCalculator{store: store, log: log}
}

// ManualInputs are the caller-supplied adjustments, persisted per exact
// (startDate, endDate) pair. Absent values default to 0.
type ManualInputs struct {
	ReportedCashSales  int64 `json:"reported_cash_sales"`
	ManagerRentSupport int64 `json:"manager_rent_support"`
}

// PeriodTotals are the raw aggregates a settlement is computed from.
type PeriodTotals struct {
	CardSales       int64 `json:"card_sales"`
	CashSales       int64 `json:"cash_sales"`
	TotalSales      int64 `json:"total_sales"`
	TotalPurchase   int64 `json:"total_purchase"`
	LaborCost       int64 `json:"labor_cost"`
	UrgentLaborCost int64 `json:"urgent_labor_cost"`
}

// SettlementReport is the full settlement response for one period.
type SettlementReport struct {
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Totals    PeriodTotals `json:"totals"`
	Inputs    ManualInputs `json:"inputs"`

	LaborCostExcluded int64 `json:"labor_cost_excluded"`
	GrossProfit       int64 `json:"gross_profit"`
	SalesVAT          int64 `json:"sales_vat"`
	PurchaseVAT       int64 `json:"purchase_vat"`
	ActualVAT         int64 `json:"actual_vat"`
	NetProfit         int64 `json:"net_profit"`
}

// Settle computes the report for [startOfDay(start), endOfDay(end)]. When
// inputs is nil the manual adjustments persisted for the exact date pair are
// used, defaulting to zero if the pair was never saved.
func (s *SettlementCalculator) Settle(ctx context.Context, start, end time.Time, inputs *ManualInputs) (SettlementReport, error) {
	if inputs == nil {
		stored, err := s.store.GetSettlement(ctx, start, end)
		if err != nil {
			return SettlementReport{}, fmt.Errorf("load settlement inputs: %w", err)
		}
		inputs = &ManualInputs{}
		if stored != nil {
			inputs.ReportedCashSales = stored.ReportedCashSales
			inputs.ManagerRentSupport = stored.ManagerRentSupport
		}
	}

	from := startOfDay(start)
	to := endOfDay(end)

	totalSales, cashSales, err := s.store.SalesTotals(ctx, from, to)
	if err != nil {
		return SettlementReport{}, fmt.Errorf("aggregate sales: %w", err)
	}
	totalPurchase, labor, urgentLabor, err := s.store.PurchaseTotals(ctx, from, to)
	if err != nil {
		return SettlementReport{}, fmt.Errorf("aggregate purchases: %w", err)
	}

	totals := PeriodTotals{
		CardSales:       totalSales - cashSales,
		CashSales:       cashSales,
		TotalSales:      totalSales,
		TotalPurchase:   totalPurchase,
		LaborCost:       labor,
		UrgentLaborCost: urgentLabor,
	}

	report := ComputeSettlement(totals, *inputs)
	report.StartDate = start.Format("2006-01-02")
	report.EndDate = end.Format("2006-01-02")
	return report, nil
}

// Save upserts the manual inputs for the exact date pair, then recomputes.
func (s *SettlementCalculator) Save(ctx context.Context, start, end time.Time, inputs ManualInputs) (SettlementReport, error) {
	if _, err := s.store.UpsertSettlement(ctx, start, end, inputs.ReportedCashSales, inputs.ManagerRentSupport); err != nil {
		return SettlementReport{}, fmt.Errorf("save settlement inputs: %w", err)
	}
	s.log.Info("settlement inputs saved",
		"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))
	return s.Settle(ctx, start, end, &inputs)
}

// ComputeSettlement is the pure settlement arithmetic. Ordinary labor cost
// leaves the VAT purchase base while urgent labor ("인건비(급구)") stays in
// it; that asymmetry is a confirmed business rule, not an oversight. Each
// VAT term is rounded half-up on its own before the subtraction; computing
// actualVAT from the un-rounded difference would change the published
// figures by one won.
func ComputeSettlement(t PeriodTotals, in ManualInputs) SettlementReport {
	laborExcluded := t.LaborCost - t.UrgentLaborCost

	salesVAT := roundTenth(t.CardSales + in.ReportedCashSales)
	purchaseVAT := roundTenth(t.TotalPurchase - laborExcluded)
	actualVAT := salesVAT - purchaseVAT

	grossProfit := t.TotalSales - t.TotalPurchase

	return SettlementReport{
		Totals:            t,
		Inputs:            in,
		LaborCostExcluded: laborExcluded,
		GrossProfit:       grossProfit,
		SalesVAT:          salesVAT,
		PurchaseVAT:       purchaseVAT,
		ActualVAT:         actualVAT,
		NetProfit:         grossProfit - actualVAT - in.ManagerRentSupport,
	}
}

// roundTenth returns v/10 rounded half-up to the nearest integer.
func roundTenth(v int64) int64 {
	return int64(math.Floor(float64(v)/10.0 + 0.5))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
