package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/services"
	"github.com/hyunsoolee/jangbu-api/internal/store"
)

// MockLedgerStore is a mock implementation of LedgerStore for testing
type MockLedgerStore struct {
	ListUnconfirmedFunc func(ctx context.Context, t models.LedgerType, keywords []string, offset, limit int) ([]models.LedgerRow, int64, error)
	InsertRowFunc       func(ctx context.Context, r models.LedgerRow) (models.LedgerRow, error)
	UpdateRowFunc       func(ctx context.Context, t models.LedgerType, id uuid.UUID, p store.RowPatch) (models.LedgerRow, error)
	DeleteRowsFunc      func(ctx context.Context, t models.LedgerType, ids []uuid.UUID) (int64, error)
	DeleteExceptFunc    func(ctx context.Context, t models.LedgerType, keywords []string) (int64, error)
	DeleteRangeFunc     func(ctx context.Context, t models.LedgerType, from, to time.Time, onlyConfirmed bool) (int64, error)
}

func (m *MockLedgerStore) ListUnconfirmed(ctx context.Context, t models.LedgerType, keywords []string, offset, limit int) ([]models.LedgerRow, int64, error) {
	if m.ListUnconfirmedFunc != nil {
		return m.ListUnconfirmedFunc(ctx, t, keywords, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockLedgerStore) InsertRow(ctx context.Context, r models.LedgerRow) (models.LedgerRow, error) {
	if m.InsertRowFunc != nil {
		return m.InsertRowFunc(ctx, r)
	}
	r.ID = uuid.New()
	return r, nil
}

func (m *MockLedgerStore) UpdateRow(ctx context.Context, t models.LedgerType, id uuid.UUID, p store.RowPatch) (models.LedgerRow, error) {
	if m.UpdateRowFunc != nil {
		return m.UpdateRowFunc(ctx, t, id, p)
	}
	return models.LedgerRow{ID: id, Type: t}, nil
}

func (m *MockLedgerStore) DeleteRows(ctx context.Context, t models.LedgerType, ids []uuid.UUID) (int64, error) {
	if m.DeleteRowsFunc != nil {
		return m.DeleteRowsFunc(ctx, t, ids)
	}
	return int64(len(ids)), nil
}

func (m *MockLedgerStore) DeleteExcept(ctx context.Context, t models.LedgerType, keywords []string) (int64, error) {
	if m.DeleteExceptFunc != nil {
		return m.DeleteExceptFunc(ctx, t, keywords)
	}
	return 0, nil
}

func (m *MockLedgerStore) DeleteRange(ctx context.Context, t models.LedgerType, from, to time.Time, onlyConfirmed bool) (int64, error) {
	if m.DeleteRangeFunc != nil {
		return m.DeleteRangeFunc(ctx, t, from, to, onlyConfirmed)
	}
	return 0, nil
}

// MockConfirmer is a mock implementation of Confirmer for testing
type MockConfirmer struct {
	ConfirmFunc func(ctx context.Context, t models.LedgerType, keywords []string) (services.ConfirmResult, error)
}

func (m *MockConfirmer) Confirm(ctx context.Context, t models.LedgerType, keywords []string) (services.ConfirmResult, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, t, keywords)
	}
	return services.ConfirmResult{}, nil
}

func ledgerApp(st LedgerStore, confirmer Confirmer) *fiber.App {
	handler := NewLedgerHandler(st, confirmer, testLogger())
	app := fiber.New()
	app.Get("/ledger/:type", handler.ListRows)
	app.Post("/ledger/:type/confirm", handler.ConfirmRows)
	app.Delete("/ledger/:type/range", handler.DeleteRange)
	app.Post("/ledger/:type", handler.CreateRow)
	app.Put("/ledger/:type/:id", handler.UpdateRow)
	app.Delete("/ledger/:type", handler.DeleteRows)
	return app
}

func TestListRows_Pagination(t *testing.T) {
	var gotOffset, gotLimit int
	var gotKeywords []string
	st := &MockLedgerStore{
		ListUnconfirmedFunc: func(ctx context.Context, lt models.LedgerType, keywords []string, offset, limit int) ([]models.LedgerRow, int64, error) {
			gotKeywords, gotOffset, gotLimit = keywords, offset, limit
			return []models.LedgerRow{{ItemName: "점심 매출"}}, 101, nil
		},
	}
	app := ledgerApp(st, &MockConfirmer{})

	req := httptest.NewRequest("GET", "/ledger/sales?page=3&page_size=20&keywords=vip", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 40, gotOffset)
	assert.Equal(t, 20, gotLimit)
	// keywords reach the store width-expanded
	assert.Equal(t, []string{"vip", "ｖｉｐ"}, gotKeywords)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(101), result["total"])
	assert.Equal(t, float64(3), result["page"])
}

func TestListRows_DefaultsAndInvalidType(t *testing.T) {
	var gotOffset, gotLimit int
	st := &MockLedgerStore{
		ListUnconfirmedFunc: func(ctx context.Context, lt models.LedgerType, keywords []string, offset, limit int) ([]models.LedgerRow, int64, error) {
			gotOffset, gotLimit = offset, limit
			return nil, 0, nil
		},
	}
	app := ledgerApp(st, &MockConfirmer{})

	resp, err := app.Test(httptest.NewRequest("GET", "/ledger/sales?page=-1&page_size=9999", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, 50, gotLimit)

	resp, err = app.Test(httptest.NewRequest("GET", "/ledger/wages", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateRow_Validation(t *testing.T) {
	app := ledgerApp(&MockLedgerStore{}, &MockConfirmer{})

	cases := []map[string]interface{}{
		{"item_name": "", "amount": 100, "date": "2024-01-15"},
		{"item_name": "외상", "amount": 0, "date": "2024-01-15"},
		{"item_name": "외상", "amount": 100, "date": "언젠가"},
	}
	for _, body := range cases {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/ledger/sales", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "body %v", body)
	}
}

func TestCreateRow_Success(t *testing.T) {
	var inserted models.LedgerRow
	st := &MockLedgerStore{
		InsertRowFunc: func(ctx context.Context, r models.LedgerRow) (models.LedgerRow, error) {
			inserted = r
			r.ID = uuid.New()
			return r, nil
		},
	}
	app := ledgerApp(st, &MockConfirmer{})

	raw, _ := json.Marshal(map[string]interface{}{
		"date":      "2024-01-15",
		"item_name": "단체 예약",
		"amount":    3200000,
	})
	req := httptest.NewRequest("POST", "/ledger/sales", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.LedgerSales, inserted.Type)
	assert.False(t, inserted.Confirmed)
	assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), inserted.Date)
	// missing category falls back to the default label
	assert.Equal(t, services.DefaultCategory, inserted.Category)
}

func TestUpdateRow_InvalidID(t *testing.T) {
	app := ledgerApp(&MockLedgerStore{}, &MockConfirmer{})

	raw, _ := json.Marshal(map[string]interface{}{"amount": 5})
	req := httptest.NewRequest("PUT", "/ledger/sales/not-a-uuid", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateRow_PatchFields(t *testing.T) {
	var gotPatch store.RowPatch
	st := &MockLedgerStore{
		UpdateRowFunc: func(ctx context.Context, lt models.LedgerType, id uuid.UUID, p store.RowPatch) (models.LedgerRow, error) {
			gotPatch = p
			return models.LedgerRow{ID: id}, nil
		},
	}
	app := ledgerApp(st, &MockConfirmer{})

	raw, _ := json.Marshal(map[string]interface{}{
		"amount": 99000,
		"date":   "2024-02-01",
	})
	req := httptest.NewRequest("PUT", "/ledger/purchase/"+uuid.NewString(), bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, gotPatch.Amount)
	assert.Equal(t, int64(99000), *gotPatch.Amount)
	require.NotNil(t, gotPatch.Date)
	assert.Equal(t, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), *gotPatch.Date)
	assert.Nil(t, gotPatch.ItemName)
	assert.Nil(t, gotPatch.Confirmed)
}

func TestDeleteRows_ByIDs(t *testing.T) {
	var gotIDs []uuid.UUID
	st := &MockLedgerStore{
		DeleteRowsFunc: func(ctx context.Context, lt models.LedgerType, ids []uuid.UUID) (int64, error) {
			gotIDs = ids
			return int64(len(ids)), nil
		},
	}
	app := ledgerApp(st, &MockConfirmer{})

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	raw, _ := json.Marshal(map[string]interface{}{"ids": ids})
	req := httptest.NewRequest("DELETE", "/ledger/sales", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, ids, gotIDs)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(2), result["deleted"])
}

func TestDeleteRows_ExceptRequiresKeywords(t *testing.T) {
	app := ledgerApp(&MockLedgerStore{}, &MockConfirmer{})

	raw, _ := json.Marshal(map[string]interface{}{"mode": "DELETE_EXCEPT"})
	req := httptest.NewRequest("DELETE", "/ledger/sales", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteRows_Except(t *testing.T) {
	var gotKeywords []string
	st := &MockLedgerStore{
		DeleteExceptFunc: func(ctx context.Context, lt models.LedgerType, keywords []string) (int64, error) {
			gotKeywords = keywords
			return 7, nil
		},
	}
	app := ledgerApp(st, &MockConfirmer{})

	raw, _ := json.Marshal(map[string]interface{}{
		"mode":     "DELETE_EXCEPT",
		"keywords": []string{"식자재"},
	})
	req := httptest.NewRequest("DELETE", "/ledger/purchase", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"식자재"}, gotKeywords)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(7), result["deleted"])
}

func TestDeleteRange(t *testing.T) {
	var gotFrom, gotTo time.Time
	var gotOnlyConfirmed bool
	st := &MockLedgerStore{
		DeleteRangeFunc: func(ctx context.Context, lt models.LedgerType, from, to time.Time, onlyConfirmed bool) (int64, error) {
			gotFrom, gotTo, gotOnlyConfirmed = from, to, onlyConfirmed
			return 12, nil
		},
	}
	app := ledgerApp(st, &MockConfirmer{})

	req := httptest.NewRequest("DELETE", "/ledger/sales/range?start=2024-01-01&end=2024-01-31&onlyConfirmed=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, gotOnlyConfirmed)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	// the end boundary covers the whole final day
	assert.Equal(t, 31, gotTo.Day())
	assert.Equal(t, 23, gotTo.Hour())
}

func TestDeleteRange_BadPeriod(t *testing.T) {
	app := ledgerApp(&MockLedgerStore{}, &MockConfirmer{})

	for _, target := range []string{
		"/ledger/sales/range",
		"/ledger/sales/range?start=2024-01-01",
		"/ledger/sales/range?start=2024-02-01&end=2024-01-01",
		"/ledger/sales/range?start=yesterday&end=today",
	} {
		resp, err := app.Test(httptest.NewRequest("DELETE", target, nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "target %s", target)
	}
}

func TestConfirmRows(t *testing.T) {
	var gotKeywords []string
	confirmer := &MockConfirmer{
		ConfirmFunc: func(ctx context.Context, lt models.LedgerType, keywords []string) (services.ConfirmResult, error) {
			gotKeywords = keywords
			return services.ConfirmResult{Confirmed: 5, Discarded: 2}, nil
		},
	}
	app := ledgerApp(&MockLedgerStore{}, confirmer)

	raw, _ := json.Marshal(map[string]interface{}{"keywords": []string{"카드"}})
	req := httptest.NewRequest("POST", "/ledger/sales/confirm", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"카드"}, gotKeywords)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(5), result["confirmed"])
	assert.Equal(t, float64(2), result["discarded"])
}

func TestConfirmRows_EmptyBodyConfirmsAll(t *testing.T) {
	var gotKeywords []string
	called := false
	confirmer := &MockConfirmer{
		ConfirmFunc: func(ctx context.Context, lt models.LedgerType, keywords []string) (services.ConfirmResult, error) {
			called = true
			gotKeywords = keywords
			return services.ConfirmResult{}, nil
		},
	}
	app := ledgerApp(&MockLedgerStore{}, confirmer)

	resp, err := app.Test(httptest.NewRequest("POST", "/ledger/purchase/confirm", nil))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, called)
	assert.Empty(t, gotKeywords)
}
