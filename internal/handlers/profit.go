package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/store"
)

// ProfitStore is the persistence surface for the confirmed-row reports.
type ProfitStore interface {
	DailyTotals(ctx context.Context, t models.LedgerType, from, to time.Time) ([]store.DayTotal, error)
	FindConfirmedInRange(ctx context.Context, t models.LedgerType, from, to time.Time) ([]models.LedgerRow, error)
	ItemBreakdown(ctx context.Context, t models.LedgerType, from, to time.Time, category string, keywords []string) ([]store.ItemTotal, error)
}

// ProfitHandler serves the reporting endpoints over confirmed rows
type ProfitHandler struct {
	store ProfitStore
	log   *slog.Logger
}

// NewProfitHandler creates a new profit handler
func NewProfitHandler(st ProfitStore, log *slog.Logger) *ProfitHandler {
	return &ProfitHandler{store: st, log: log}
}

// DayProfit is one day of the period breakdown. Every day in the requested
// range appears, zeros included, so charts stay contiguous.
type DayProfit struct {
	Date          string `json:"date"`
	Sales         int64  `json:"sales"`
	SalesCount    int64  `json:"sales_count"`
	Purchase      int64  `json:"purchase"`
	PurchaseCount int64  `json:"purchase_count"`
	Profit        int64  `json:"profit"`
}

// ProfitPeriod returns the per-day sales/purchase/profit breakdown.
// GET /v1/profit/period?start=2024-01-01&end=2024-01-31
func (h *ProfitHandler) ProfitPeriod(c fiber.Ctx) error {
	from, to, err := parsePeriod(c.Query("start"), c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start and end must be YYYY-MM-DD dates with start <= end",
		})
	}
	return h.renderDailyReport(c, from, to)
}

// ProfitCalendar returns the same breakdown for one calendar month.
// GET /v1/profit/calendar?year=2024&month=2
func (h *ProfitHandler) ProfitCalendar(c fiber.Ctx) error {
	now := time.Now().UTC()
	year, err := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "year must be an integer",
		})
	}
	month, err := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "month must be between 1 and 12",
		})
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return h.renderDailyReport(c, from, to)
}

func (h *ProfitHandler) renderDailyReport(c fiber.Ctx, from, to time.Time) error {
	sales, err := h.store.DailyTotals(c.Context(), models.LedgerSales, from, to)
	if err != nil {
		h.log.Error("daily sales totals", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build profit report",
		})
	}
	purchases, err := h.store.DailyTotals(c.Context(), models.LedgerPurchase, from, to)
	if err != nil {
		h.log.Error("daily purchase totals", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build profit report",
		})
	}

	daily := buildDailyProfits(from, to, sales, purchases)

	var totalSales, totalPurchase int64
	for _, d := range daily {
		totalSales += d.Sales
		totalPurchase += d.Purchase
	}
	return c.JSON(fiber.Map{
		"summary": fiber.Map{
			"total_sales":    totalSales,
			"total_purchase": totalPurchase,
			"total_profit":   totalSales - totalPurchase,
		},
		"daily": daily,
	})
}

// ProfitDetail lists the confirmed rows of one day, largest amounts first.
// GET /v1/profit/detail?date=2024-01-15
func (h *ProfitHandler) ProfitDetail(c fiber.Ctx) error {
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date must be a YYYY-MM-DD date",
		})
	}
	from, to := day, day.Add(24*time.Hour-time.Nanosecond)

	sales, err := h.store.FindConfirmedInRange(c.Context(), models.LedgerSales, from, to)
	if err != nil {
		h.log.Error("day detail sales", "date", c.Query("date"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch day detail",
		})
	}
	purchases, err := h.store.FindConfirmedInRange(c.Context(), models.LedgerPurchase, from, to)
	if err != nil {
		h.log.Error("day detail purchases", "date", c.Query("date"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch day detail",
		})
	}

	var totalSales, totalPurchase int64
	for _, r := range sales {
		totalSales += r.Amount
	}
	for _, r := range purchases {
		totalPurchase += r.Amount
	}
	if sales == nil {
		sales = []models.LedgerRow{}
	}
	if purchases == nil {
		purchases = []models.LedgerRow{}
	}
	return c.JSON(fiber.Map{
		"date":      c.Query("date"),
		"sales":     sales,
		"purchases": purchases,
		"summary": fiber.Map{
			"total_sales":    totalSales,
			"total_purchase": totalPurchase,
		},
	})
}

// AnalyzeItems groups one ledger's confirmed rows by item and category.
// GET /v1/ledger/:type/analysis?start&end&category=식자재&keywords=a,b
func (h *ProfitHandler) AnalyzeItems(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}

	// The period is optional; without one the whole ledger is analyzed.
	from, to := time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if c.Query("start") != "" || c.Query("end") != "" {
		var err error
		from, to, err = parsePeriod(c.Query("start"), c.Query("end"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start and end must be YYYY-MM-DD dates with start <= end",
			})
		}
	}

	keywords := widenKeywords(splitKeywords(c.Query("keywords")))
	items, err := h.store.ItemBreakdown(c.Context(), ledgerType, from, to, c.Query("category"), keywords)
	if err != nil {
		h.log.Error("item breakdown", "type", ledgerType, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to analyze items",
		})
	}
	if items == nil {
		items = []store.ItemTotal{}
	}
	return c.JSON(fiber.Map{"items": items})
}

// buildDailyProfits merges the per-type day totals over a contiguous day
// sequence spanning [from, to].
func buildDailyProfits(from, to time.Time, sales, purchases []store.DayTotal) []DayProfit {
	first := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	var daily []DayProfit
	index := make(map[string]int)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		index[key] = len(daily)
		daily = append(daily, DayProfit{Date: key})
	}
	for _, s := range sales {
		if i, ok := index[s.Date.Format("2006-01-02")]; ok {
			daily[i].Sales = s.Amount
			daily[i].SalesCount = s.Count
			daily[i].Profit += s.Amount
		}
	}
	for _, p := range purchases {
		if i, ok := index[p.Date.Format("2006-01-02")]; ok {
			daily[i].Purchase = p.Amount
			daily[i].PurchaseCount = p.Count
			daily[i].Profit -= p.Amount
		}
	}
	return daily
}
