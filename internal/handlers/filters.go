package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/utils"
)

// FiltersStore is the persistence surface for persisted keyword filters.
type FiltersStore interface {
	ListFilters(ctx context.Context, t models.LedgerType) ([]models.ExcelFilter, error)
	CreateFilter(ctx context.Context, t models.LedgerType, keyword string, isInclude bool) error
	DeleteFilter(ctx context.Context, id uuid.UUID) error
}

// FiltersHandler manages the global keyword filters consulted on every upload
type FiltersHandler struct {
	store FiltersStore
	log   *slog.Logger
}

// NewFiltersHandler creates a new filters handler
func NewFiltersHandler(st FiltersStore, log *slog.Logger) *FiltersHandler {
	return &FiltersHandler{store: st, log: log}
}

// ListFilters returns the persisted filters for one ledger type.
// GET /v1/filters/:type
func (h *FiltersHandler) ListFilters(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return utils.NewBadRequestError("type must be sales or purchase", nil)
	}
	filters, err := h.store.ListFilters(c.Context(), ledgerType)
	if err != nil {
		h.log.Error("list filters", "type", ledgerType, "error", err)
		return utils.NewInternalError(err)
	}
	if filters == nil {
		filters = []models.ExcelFilter{}
	}
	return c.JSON(fiber.Map{"filters": filters})
}

// CreateFilterRequest adds one keyword filter. IsInclude selects the
// INCLUDE-side list; false is the EXCLUDE side.
type CreateFilterRequest struct {
	Keyword   string `json:"keyword"`
	IsInclude bool   `json:"is_include"`
}

// CreateFilter adds a keyword; an existing (keyword, polarity) is a no-op.
// POST /v1/filters/:type
func (h *FiltersHandler) CreateFilter(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return utils.NewBadRequestError("type must be sales or purchase", nil)
	}
	var req CreateFilterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return utils.NewValidationError("keyword is required", "keyword")
	}
	if err := h.store.CreateFilter(c.Context(), ledgerType, keyword, req.IsInclude); err != nil {
		h.log.Error("create filter", "type", ledgerType, "error", err)
		return utils.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"keyword":    keyword,
		"is_include": req.IsInclude,
	})
}

// DeleteFilter removes one keyword filter.
// DELETE /v1/filters/:type/:id
func (h *FiltersHandler) DeleteFilter(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("id must be a valid UUID", nil)
	}
	if err := h.store.DeleteFilter(c.Context(), id); err != nil {
		h.log.Error("delete filter", "id", id, "error", err)
		return utils.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}
