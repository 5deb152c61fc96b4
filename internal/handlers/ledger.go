package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/services"
	"github.com/hyunsoolee/jangbu-api/internal/store"
)

// LedgerStore is the persistence surface the row endpoints need.
type LedgerStore interface {
	ListUnconfirmed(ctx context.Context, t models.LedgerType, keywords []string, offset, limit int) ([]models.LedgerRow, int64, error)
	InsertRow(ctx context.Context, r models.LedgerRow) (models.LedgerRow, error)
	UpdateRow(ctx context.Context, t models.LedgerType, id uuid.UUID, p store.RowPatch) (models.LedgerRow, error)
	DeleteRows(ctx context.Context, t models.LedgerType, ids []uuid.UUID) (int64, error)
	DeleteExcept(ctx context.Context, t models.LedgerType, keywords []string) (int64, error)
	DeleteRange(ctx context.Context, t models.LedgerType, from, to time.Time, onlyConfirmed bool) (int64, error)
}

// Confirmer promotes staged rows into the confirmed ledger.
type Confirmer interface {
	Confirm(ctx context.Context, t models.LedgerType, keywords []string) (services.ConfirmResult, error)
}

// LedgerHandler handles the staged-row endpoints
type LedgerHandler struct {
	store     LedgerStore
	confirmer Confirmer
	log       *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(st LedgerStore, confirmer Confirmer, log *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		store:     st,
		confirmer: confirmer,
		log:       log,
	}
}

// ListRows returns the unconfirmed working batch, paginated.
// GET /v1/ledger/:type?keywords=a,b&page=1&page_size=50
func (h *LedgerHandler) ListRows(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "50"))
	if err != nil || pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	keywords := widenKeywords(splitKeywords(c.Query("keywords")))

	rows, total, err := h.store.ListUnconfirmed(c.Context(), ledgerType, keywords, (page-1)*pageSize, pageSize)
	if err != nil {
		h.log.Error("list ledger rows", "type", ledgerType, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch ledger rows",
		})
	}

	if rows == nil {
		rows = []models.LedgerRow{}
	}
	return c.JSON(fiber.Map{
		"rows":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateRowRequest is the body for a manually entered row.
type CreateRowRequest struct {
	Date          string `json:"date"`
	ItemName      string `json:"item_name"`
	Amount        int64  `json:"amount"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note"`
}

// CreateRow inserts one manual row into the unconfirmed batch.
// POST /v1/ledger/:type
func (h *LedgerHandler) CreateRow(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}

	var req CreateRowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ItemName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "item_name is required",
		})
	}
	if req.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount must be a non-zero integer",
		})
	}
	date, err := services.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date is not in a recognized format",
		})
	}

	category := req.Category
	if category == "" {
		category = services.DefaultCategory
	}

	row, err := h.store.InsertRow(c.Context(), models.LedgerRow{
		Type:          ledgerType,
		Date:          date,
		ItemName:      req.ItemName,
		Amount:        req.Amount,
		Category:      category,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		Confirmed:     false,
	})
	if err != nil {
		h.log.Error("create ledger row", "type", ledgerType, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create ledger row",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

// UpdateRowRequest carries the optional fields of a row update.
type UpdateRowRequest struct {
	Date          *string `json:"date"`
	ItemName      *string `json:"item_name"`
	Amount        *int64  `json:"amount"`
	Category      *string `json:"category"`
	PaymentMethod *string `json:"payment_method"`
	Note          *string `json:"note"`
}

// UpdateRow patches one row.
// PUT /v1/ledger/:type/:id
func (h *LedgerHandler) UpdateRow(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id must be a valid UUID",
		})
	}

	var req UpdateRowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Amount != nil && *req.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount must be a non-zero integer",
		})
	}

	patch := store.RowPatch{
		ItemName:      req.ItemName,
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	}
	if req.Date != nil {
		date, err := services.ParseDate(*req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date is not in a recognized format",
			})
		}
		patch.Date = &date
	}

	row, err := h.store.UpdateRow(c.Context(), ledgerType, id, patch)
	if err != nil {
		h.log.Error("update ledger row", "type", ledgerType, "id", id, "error", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "ledger row not found",
		})
	}
	return c.JSON(row)
}

// DeleteRowsRequest selects rows to delete: either explicit ids, or with
// mode DELETE_EXCEPT every unconfirmed row that matches none of the keywords.
type DeleteRowsRequest struct {
	Mode     string      `json:"mode"`
	IDs      []uuid.UUID `json:"ids"`
	Keywords []string    `json:"keywords"`
}

// DeleteRows deletes staged rows.
// DELETE /v1/ledger/:type
func (h *LedgerHandler) DeleteRows(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}

	var req DeleteRowsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Mode == "DELETE_EXCEPT" {
		keywords := widenKeywords(req.Keywords)
		if len(keywords) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "DELETE_EXCEPT requires at least one keyword",
			})
		}
		deleted, err := h.store.DeleteExcept(c.Context(), ledgerType, keywords)
		if err != nil {
			h.log.Error("delete except", "type", ledgerType, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete ledger rows",
			})
		}
		return c.JSON(fiber.Map{"deleted": deleted})
	}

	if len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ids is required",
		})
	}
	deleted, err := h.store.DeleteRows(c.Context(), ledgerType, req.IDs)
	if err != nil {
		h.log.Error("delete ledger rows", "type", ledgerType, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete ledger rows",
		})
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// DeleteRange deletes rows dated within [start, end].
// DELETE /v1/ledger/:type/range?start=2024-01-01&end=2024-01-31&onlyConfirmed=true
func (h *LedgerHandler) DeleteRange(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}

	from, to, err := parsePeriod(c.Query("start"), c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start and end must be YYYY-MM-DD dates with start <= end",
		})
	}
	onlyConfirmed := c.Query("onlyConfirmed") == "true"

	deleted, err := h.store.DeleteRange(c.Context(), ledgerType, from, to, onlyConfirmed)
	if err != nil {
		h.log.Error("delete ledger range", "type", ledgerType, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete ledger rows",
		})
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// ConfirmRequest narrows the confirm candidates by keyword. Empty means the
// whole unconfirmed batch.
type ConfirmRequest struct {
	Keywords []string `json:"keywords"`
}

// ConfirmRows reconciles the staged batch into the confirmed ledger.
// POST /v1/ledger/:type/confirm
func (h *LedgerHandler) ConfirmRows(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}

	var req ConfirmRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	result, err := h.confirmer.Confirm(c.Context(), ledgerType, req.Keywords)
	if err != nil {
		h.log.Error("confirm ledger rows", "type", ledgerType, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to confirm ledger rows",
		})
	}
	return c.JSON(result)
}

// widenKeywords expands each keyword into its width variants so a search hits
// regardless of which form the spreadsheet used.
func widenKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		out = append(out, services.SearchVariants(k)...)
	}
	return out
}

// parsePeriod parses a start/end day pair into the inclusive timestamp range
// covering both days.
func parsePeriod(start, end string) (time.Time, time.Time, error) {
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
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}
