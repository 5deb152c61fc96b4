package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/hyunsoolee/jangbu-api/internal/services"
	"github.com/hyunsoolee/jangbu-api/internal/utils"
)

// SettlementService computes and saves period settlements.
type SettlementService interface {
	Settle(ctx context.Context, start, end time.Time, inputs *services.ManualInputs) (services.SettlementReport, error)
	Save(ctx context.Context, start, end time.Time, inputs services.ManualInputs) (services.SettlementReport, error)
}

// SettlementHandler handles the profit/VAT settlement endpoints
type SettlementHandler struct {
	calc SettlementService
	log  *slog.Logger
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(calc SettlementService, log *slog.Logger) *SettlementHandler {
	return &SettlementHandler{calc: calc, log: log}
}

// GetSettlement computes the report for a period, applying the manual inputs
// previously saved for that exact date pair.
// GET /v1/settlement?start=2024-01-01&end=2024-01-31
func (h *SettlementHandler) GetSettlement(c fiber.Ctx) error {
	start, end, err := parseSettlementPeriod(c.Query("start"), c.Query("end"))
	if err != nil {
		return utils.NewBadRequestError("start and end must be YYYY-MM-DD dates with start <= end", nil)
	}

	report, err := h.calc.Settle(c.Context(), start, end, nil)
	if err != nil {
		h.log.Error("compute settlement", "start", c.Query("start"), "end", c.Query("end"), "error", err)
		return utils.NewInternalError(err)
	}
	return c.JSON(report)
}

// SaveSettlementRequest carries the manual adjustments. Amounts arrive as
// strings because the admin screen forwards raw text fields; blanks mean 0.
type SaveSettlementRequest struct {
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	ReportedCashSales  string `json:"reported_cash_sales"`
	ManagerRentSupport string `json:"manager_rent_support"`
}

// SaveSettlement persists the manual inputs for the exact date pair and
// returns the recomputed report.
// POST /v1/settlement
func (h *SettlementHandler) SaveSettlement(c fiber.Ctx) error {
	var req SaveSettlementRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}

	start, end, err := parseSettlementPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return utils.NewBadRequestError("start_date and end_date must be YYYY-MM-DD dates with start <= end", nil)
	}

	reportedCash, err := parseManualAmount(req.ReportedCashSales)
	if err != nil {
		return utils.NewValidationError(services.ErrInvalidManualInput.Error(), "reported_cash_sales")
	}
	rentSupport, err := parseManualAmount(req.ManagerRentSupport)
	if err != nil {
		return utils.NewValidationError(services.ErrInvalidManualInput.Error(), "manager_rent_support")
	}

	report, err := h.calc.Save(c.Context(), start, end, services.ManualInputs{
		ReportedCashSales:  reportedCash,
		ManagerRentSupport: rentSupport,
	})
	if err != nil {
		h.log.Error("save settlement", "start", req.StartDate, "end", req.EndDate, "error", err)
		return utils.NewInternalError(err)
	}
	return c.JSON(report)
}

// parseSettlementPeriod parses the day pair the calculator expands to
// [startOfDay, endOfDay] itself.
func parseSettlementPeriod(start, end string) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errPeriodInverted
	}
	return from, to, nil
}

// parseManualAmount parses a manual adjustment. Blank means 0; thousands
// separators are tolerated since values are pasted from spreadsheets.
func parseManualAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
}
