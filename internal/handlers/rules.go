package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/store"
	"github.com/hyunsoolee/jangbu-api/internal/utils"
)

// RulesStore is the persistence surface for classification rules and the
// category labels they draw from.
type RulesStore interface {
	ListClassificationRules(ctx context.Context, t models.LedgerType) ([]models.ClassificationRule, error)
	CreateClassificationRules(ctx context.Context, t models.LedgerType, inputs []store.RuleInput) (int64, error)
	DeleteClassificationRule(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, t models.LedgerType) ([]models.Category, error)
	CreateCategory(ctx context.Context, t models.LedgerType, name string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// RulesHandler handles classification rule and category management
type RulesHandler struct {
	store RulesStore
	log   *slog.Logger
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(st RulesStore, log *slog.Logger) *RulesHandler {
	return &RulesHandler{store: st, log: log}
}

// ListRules returns the rule table for one ledger type.
// GET /v1/rules/:type
func (h *RulesHandler) ListRules(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return utils.NewBadRequestError("type must be sales or purchase", nil)
	}
	rules, err := h.store.ListClassificationRules(c.Context(), ledgerType)
	if err != nil {
		h.log.Error("list rules", "type", ledgerType, "error", err)
		return utils.NewInternalError(err)
	}
	if rules == nil {
		rules = []models.ClassificationRule{}
	}
	return c.JSON(fiber.Map{"rules": rules})
}

// CreateRulesRequest is a bulk rule import. Text is the pasted form, one
// "item : category" (or tab-separated) pair per line; Rules is the structured
// form. Both may be present.
type CreateRulesRequest struct {
	Text  string `json:"text"`
	Rules []struct {
		ItemName string `json:"item_name"`
		Category string `json:"category"`
	} `json:"rules"`
}

// CreateRules imports rules for one ledger type. Pairs that already exist
// are skipped, so re-importing the same sheet is harmless.
// POST /v1/rules/:type
func (h *RulesHandler) CreateRules(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return utils.NewBadRequestError("type must be sales or purchase", nil)
	}

	var req CreateRulesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}

	inputs := parseRuleLines(req.Text)
	for _, r := range req.Rules {
		if r.ItemName != "" && r.Category != "" {
			inputs = append(inputs, store.RuleInput{ItemName: r.ItemName, Category: r.Category})
		}
	}
	if len(inputs) == 0 {
		return utils.NewBadRequestError("no valid rule pairs found", nil)
	}

	created, err := h.store.CreateClassificationRules(c.Context(), ledgerType, inputs)
	if err != nil {
		h.log.Error("create rules", "type", ledgerType, "error", err)
		return utils.NewInternalError(err)
	}
	return c.JSON(fiber.Map{
		"created": created,
		"skipped": int64(len(inputs)) - created,
	})
}

// DeleteRule removes one rule.
// DELETE /v1/rules/:type/:id
func (h *RulesHandler) DeleteRule(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("id must be a valid UUID", nil)
	}
	if err := h.store.DeleteClassificationRule(c.Context(), id); err != nil {
		h.log.Error("delete rule", "id", id, "error", err)
		return utils.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// ListCategories returns the category labels for one ledger type.
// GET /v1/categories/:type
func (h *RulesHandler) ListCategories(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return utils.NewBadRequestError("type must be sales or purchase", nil)
	}
	categories, err := h.store.ListCategories(c.Context(), ledgerType)
	if err != nil {
		h.log.Error("list categories", "type", ledgerType, "error", err)
		return utils.NewInternalError(err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// CreateCategoryRequest names one new category label.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory adds a label; an existing name is a no-op.
// POST /v1/categories/:type
func (h *RulesHandler) CreateCategory(c fiber.Ctx) error {
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return utils.NewBadRequestError("type must be sales or purchase", nil)
	}
	var req CreateCategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.NewValidationError("name is required", "name")
	}
	if err := h.store.CreateCategory(c.Context(), ledgerType, name); err != nil {
		h.log.Error("create category", "type", ledgerType, "error", err)
		return utils.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"name": name})
}

// DeleteCategory removes one label.
// DELETE /v1/categories/:type/:id
func (h *RulesHandler) DeleteCategory(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("id must be a valid UUID", nil)
	}
	if err := h.store.DeleteCategory(c.Context(), id); err != nil {
		h.log.Error("delete category", "id", id, "error", err)
		return utils.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// parseRuleLines parses pasted rule text: one pair per line, split on a tab
// when present, otherwise on the first colon. Malformed lines are skipped.
func parseRuleLines(text string) []store.RuleInput {
	var out []store.RuleInput
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var item, category string
		if strings.Contains(line, "\t") {
			parts := strings.SplitN(line, "\t", 2)
			item, category = parts[0], parts[1]
		} else if idx := strings.Index(line, ":"); idx >= 0 {
			item, category = line[:idx], line[idx+1:]
		} else {
			continue
		}
		item = strings.TrimSpace(item)
		category = strings.TrimSpace(category)
		if item == "" || category == "" {
			continue
		}
		out = append(out, store.RuleInput{ItemName: item, Category: category})
	}
	return out
}
