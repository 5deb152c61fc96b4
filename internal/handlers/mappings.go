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

// MappingsStore is the persistence surface for column-mapping profiles.
type MappingsStore interface {
	ListMappings(ctx context.Context, userID string, t models.LedgerType) ([]models.ColumnMapping, error)
	CreateMapping(ctx context.Context, m models.ColumnMapping) (models.ColumnMapping, error)
	DeleteMapping(ctx context.Context, userID string, id uuid.UUID) (bool, error)
}

// MappingsHandler manages per-user column-mapping profiles
type MappingsHandler struct {
	store MappingsStore
	log   *slog.Logger
}

// NewMappingsHandler creates a new mappings handler
func NewMappingsHandler(st MappingsStore, log *slog.Logger) *MappingsHandler {
	return &MappingsHandler{store: st, log: log}
}

// ListMappings returns the caller's profiles, optionally narrowed by type.
// GET /v1/mappings?type=sales
func (h *MappingsHandler) ListMappings(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("unauthorized - user_id not found")
	}

	var ledgerType models.LedgerType
	if raw := c.Query("type"); raw != "" {
		ledgerType = models.LedgerType(strings.ToUpper(raw))
		if !ledgerType.Valid() {
			return utils.NewBadRequestError("type must be sales or purchase", nil)
		}
	}

	mappings, err := h.store.ListMappings(c.Context(), userID, ledgerType)
	if err != nil {
		h.log.Error("list mappings", "user_id", userID, "error", err)
		return utils.NewInternalError(err)
	}
	if mappings == nil {
		mappings = []models.ColumnMapping{}
	}
	return c.JSON(fiber.Map{"mappings": mappings})
}

// CreateMappingRequest is the body for a new profile. Date, item and amount
// hints are required since the resolver cannot proceed without them.
type CreateMappingRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	ColDate       string `json:"col_date"`
	ColItem       string `json:"col_item"`
	ColAmount     string `json:"col_amount"`
	ColCategory   string `json:"col_category"`
	ColPayment    string `json:"col_payment"`
	ColNote       string `json:"col_note"`
	FilterExclude string `json:"filter_exclude"`
	FilterInclude string `json:"filter_include"`
}

// CreateMapping saves a profile for the caller.
// POST /v1/mappings
func (h *MappingsHandler) CreateMapping(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("unauthorized - user_id not found")
	}

	var req CreateMappingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	ledgerType := models.LedgerType(strings.ToUpper(req.Type))
	if !ledgerType.Valid() {
		return utils.NewBadRequestError("type must be sales or purchase", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return utils.NewValidationError("name is required", "name")
	}
	if req.ColDate == "" || req.ColItem == "" || req.ColAmount == "" {
		return utils.NewBadRequestError("col_date, col_item and col_amount are required", nil)
	}

	mapping, err := h.store.CreateMapping(c.Context(), models.ColumnMapping{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Type:          ledgerType,
		ColDate:       req.ColDate,
		ColItem:       req.ColItem,
		ColAmount:     req.ColAmount,
		ColCategory:   req.ColCategory,
		ColPayment:    req.ColPayment,
		ColNote:       req.ColNote,
		FilterExclude: req.FilterExclude,
		FilterInclude: req.FilterInclude,
	})
	if err != nil {
		h.log.Error("create mapping", "user_id", userID, "error", err)
		return utils.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(mapping)
}

// DeleteMapping removes one of the caller's profiles.
// DELETE /v1/mappings/:id
func (h *MappingsHandler) DeleteMapping(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("unauthorized - user_id not found")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("id must be a valid UUID", nil)
	}

	deleted, err := h.store.DeleteMapping(c.Context(), userID, id)
	if err != nil {
		h.log.Error("delete mapping", "user_id", userID, "id", id, "error", err)
		return utils.NewInternalError(err)
	}
	if !deleted {
		return utils.NewNotFoundError("mapping profile")
	}
	return c.JSON(fiber.Map{"deleted": true})
}
