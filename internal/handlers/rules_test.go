package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/store"
	"github.com/hyunsoolee/jangbu-api/internal/utils"
)

// MockRulesStore is a mock implementation of RulesStore for testing
type MockRulesStore struct {
	CreateRulesFunc func(ctx context.Context, t models.LedgerType, inputs []store.RuleInput) (int64, error)
	Rules           []models.ClassificationRule
	Categories      []models.Category
}

func (m *MockRulesStore) ListClassificationRules(ctx context.Context, t models.LedgerType) ([]models.ClassificationRule, error) {
	return m.Rules, nil
}

func (m *MockRulesStore) CreateClassificationRules(ctx context.Context, t models.LedgerType, inputs []store.RuleInput) (int64, error) {
	if m.CreateRulesFunc != nil {
		return m.CreateRulesFunc(ctx, t, inputs)
	}
	return int64(len(inputs)), nil
}

func (m *MockRulesStore) DeleteClassificationRule(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *MockRulesStore) ListCategories(ctx context.Context, t models.LedgerType) ([]models.Category, error) {
	return m.Categories, nil
}

func (m *MockRulesStore) CreateCategory(ctx context.Context, t models.LedgerType, name string) error {
	return nil
}

func (m *MockRulesStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func rulesApp(st RulesStore) *fiber.App {
	handler := NewRulesHandler(st, testLogger())
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Get("/rules/:type", handler.ListRules)
	app.Post("/rules/:type", handler.CreateRules)
	app.Delete("/rules/:type/:id", handler.DeleteRule)
	app.Get("/categories/:type", handler.ListCategories)
	app.Post("/categories/:type", handler.CreateCategory)
	return app
}

func TestParseRuleLines(t *testing.T) {
	text := "한돈유통 : 식자재\n김알바:인건비\n수도요금\t공과금\n\n망가진줄\n : 이름없음\n"
	got := parseRuleLines(text)

	assert.Equal(t, []store.RuleInput{
		{ItemName: "한돈유통", Category: "식자재"},
		{ItemName: "김알바", Category: "인건비"},
		{ItemName: "수도요금", Category: "공과금"},
	}, got)
}

func TestCreateRules_TextImport(t *testing.T) {
	var gotInputs []store.RuleInput
	st := &MockRulesStore{
		CreateRulesFunc: func(ctx context.Context, lt models.LedgerType, inputs []store.RuleInput) (int64, error) {
			gotInputs = inputs
			return 2, nil
		},
	}
	app := rulesApp(st)

	raw, _ := json.Marshal(map[string]interface{}{
		"text": "한돈유통 : 식자재\n한돈유통 : 식자재\n채소도매 : 식자재",
	})
	req := httptest.NewRequest("POST", "/rules/purchase", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, gotInputs, 3)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(2), result["created"])
	assert.Equal(t, float64(1), result["skipped"])
}

func TestCreateRules_NoValidPairs(t *testing.T) {
	app := rulesApp(&MockRulesStore{})

	raw, _ := json.Marshal(map[string]interface{}{"text": "no separators here"})
	req := httptest.NewRequest("POST", "/rules/sales", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListRules(t *testing.T) {
	st := &MockRulesStore{
		Rules: []models.ClassificationRule{{ItemName: "한돈유통", Category: "식자재"}},
	}
	app := rulesApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/rules/purchase", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string][]models.ClassificationRule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result["rules"], 1)
	assert.Equal(t, "식자재", result["rules"][0].Category)
}

func TestRules_InvalidType(t *testing.T) {
	app := rulesApp(&MockRulesStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/rules/misc", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "BAD_REQUEST", result["code"])
}

func TestCreateCategory_RequiresName(t *testing.T) {
	app := rulesApp(&MockRulesStore{})

	raw, _ := json.Marshal(map[string]string{"name": "   "})
	req := httptest.NewRequest("POST", "/categories/sales", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteRule_InvalidID(t *testing.T) {
	app := rulesApp(&MockRulesStore{})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/rules/sales/nope", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
