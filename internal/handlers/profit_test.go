package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/store"
)

// MockProfitStore is a mock implementation of ProfitStore for testing
type MockProfitStore struct {
	DailyTotalsFunc          func(ctx context.Context, t models.LedgerType, from, to time.Time) ([]store.DayTotal, error)
	FindConfirmedInRangeFunc func(ctx context.Context, t models.LedgerType, from, to time.Time) ([]models.LedgerRow, error)
	ItemBreakdownFunc        func(ctx context.Context, t models.LedgerType, from, to time.Time, category string, keywords []string) ([]store.ItemTotal, error)
}

func (m *MockProfitStore) DailyTotals(ctx context.Context, t models.LedgerType, from, to time.Time) ([]store.DayTotal, error) {
	if m.DailyTotalsFunc != nil {
		return m.DailyTotalsFunc(ctx, t, from, to)
	}
	return nil, nil
}

func (m *MockProfitStore) FindConfirmedInRange(ctx context.Context, t models.LedgerType, from, to time.Time) ([]models.LedgerRow, error) {
	if m.FindConfirmedInRangeFunc != nil {
		return m.FindConfirmedInRangeFunc(ctx, t, from, to)
	}
	return nil, nil
}

func (m *MockProfitStore) ItemBreakdown(ctx context.Context, t models.LedgerType, from, to time.Time, category string, keywords []string) ([]store.ItemTotal, error) {
	if m.ItemBreakdownFunc != nil {
		return m.ItemBreakdownFunc(ctx, t, from, to, category, keywords)
	}
	return nil, nil
}

func profitApp(st ProfitStore) *fiber.App {
	handler := NewProfitHandler(st, testLogger())
	app := fiber.New()
	app.Get("/profit/period", handler.ProfitPeriod)
	app.Get("/profit/calendar", handler.ProfitCalendar)
	app.Get("/profit/detail", handler.ProfitDetail)
	app.Get("/ledger/:type/analysis", handler.AnalyzeItems)
	return app
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestProfitPeriod_MergesDailyTotals(t *testing.T) {
	var gotFrom, gotTo time.Time
	st := &MockProfitStore{
		DailyTotalsFunc: func(ctx context.Context, lt models.LedgerType, from, to time.Time) ([]store.DayTotal, error) {
			gotFrom, gotTo = from, to
			if lt == models.LedgerSales {
				return []store.DayTotal{{Date: day(t, "2024-01-02"), Amount: 300000, Count: 3}}, nil
			}
			return []store.DayTotal{
				{Date: day(t, "2024-01-02"), Amount: 100000, Count: 1},
				{Date: day(t, "2024-01-03"), Amount: 50000, Count: 2},
			}, nil
		},
	}
	app := profitApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/profit/period?start=2024-01-01&end=2024-01-03", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, day(t, "2024-01-01"), gotFrom)
	assert.Equal(t, 3, gotTo.Day())
	assert.Equal(t, 23, gotTo.Hour())

	var result struct {
		Summary struct {
			TotalSales    int64 `json:"total_sales"`
			TotalPurchase int64 `json:"total_purchase"`
			TotalProfit   int64 `json:"total_profit"`
		} `json:"summary"`
		Daily []DayProfit `json:"daily"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.Len(t, result.Daily, 3)
	assert.Equal(t, DayProfit{Date: "2024-01-01"}, result.Daily[0])
	assert.Equal(t, DayProfit{
		Date: "2024-01-02", Sales: 300000, SalesCount: 3,
		Purchase: 100000, PurchaseCount: 1, Profit: 200000,
	}, result.Daily[1])
	assert.Equal(t, DayProfit{
		Date: "2024-01-03", Purchase: 50000, PurchaseCount: 2, Profit: -50000,
	}, result.Daily[2])

	assert.Equal(t, int64(300000), result.Summary.TotalSales)
	assert.Equal(t, int64(150000), result.Summary.TotalPurchase)
	assert.Equal(t, int64(150000), result.Summary.TotalProfit)
}

func TestProfitPeriod_BadPeriod(t *testing.T) {
	app := profitApp(&MockProfitStore{})

	for _, target := range []string{
		"/profit/period",
		"/profit/period?start=2024-01-01",
		"/profit/period?start=2024-02-01&end=2024-01-01",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "target %s", target)
	}
}

func TestProfitCalendar_MonthBounds(t *testing.T) {
	var gotFrom, gotTo time.Time
	st := &MockProfitStore{
		DailyTotalsFunc: func(ctx context.Context, lt models.LedgerType, from, to time.Time) ([]store.DayTotal, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	app := profitApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/profit/calendar?year=2024&month=2", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, 29, gotTo.Day()) // leap February

	var result struct {
		Daily []DayProfit `json:"daily"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Len(t, result.Daily, 29)
}

func TestProfitCalendar_InvalidMonth(t *testing.T) {
	app := profitApp(&MockProfitStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/profit/calendar?year=2024&month=13", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProfitDetail(t *testing.T) {
	st := &MockProfitStore{
		FindConfirmedInRangeFunc: func(ctx context.Context, lt models.LedgerType, from, to time.Time) ([]models.LedgerRow, error) {
			assert.Equal(t, 15, from.Day())
			assert.Equal(t, 15, to.Day())
			if lt == models.LedgerSales {
				return []models.LedgerRow{
					{ItemName: "룸A", Amount: 50000},
					{ItemName: "홀", Amount: 30000},
				}, nil
			}
			return []models.LedgerRow{{ItemName: "한돈유통", Amount: 20000}}, nil
		},
	}
	app := profitApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/profit/detail?date=2024-01-15", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Date      string             `json:"date"`
		Sales     []models.LedgerRow `json:"sales"`
		Purchases []models.LedgerRow `json:"purchases"`
		Summary   struct {
			TotalSales    int64 `json:"total_sales"`
			TotalPurchase int64 `json:"total_purchase"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "2024-01-15", result.Date)
	assert.Len(t, result.Sales, 2)
	assert.Len(t, result.Purchases, 1)
	assert.Equal(t, int64(80000), result.Summary.TotalSales)
	assert.Equal(t, int64(20000), result.Summary.TotalPurchase)
}

func TestProfitDetail_BadDate(t *testing.T) {
	app := profitApp(&MockProfitStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/profit/detail?date=yesterday", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeItems(t *testing.T) {
	var gotType models.LedgerType
	var gotCategory string
	var gotKeywords []string
	st := &MockProfitStore{
		ItemBreakdownFunc: func(ctx context.Context, lt models.LedgerType, from, to time.Time, category string, keywords []string) ([]store.ItemTotal, error) {
			gotType, gotCategory, gotKeywords = lt, category, keywords
			return []store.ItemTotal{
				{ItemName: "한돈유통", Category: "식자재", TotalAmount: 850000, Count: 4},
			}, nil
		},
	}
	app := profitApp(st)

	resp, err := app.Test(httptest.NewRequest("GET",
		"/ledger/purchase/analysis?start=2024-01-01&end=2024-01-31&category=식자재&keywords=vip", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.LedgerPurchase, gotType)
	assert.Equal(t, "식자재", gotCategory)
	assert.Equal(t, []string{"vip", "ｖｉｐ"}, gotKeywords)

	var result struct {
		Items []store.ItemTotal `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(850000), result.Items[0].TotalAmount)
}

func TestAnalyzeItems_WholeLedgerWithoutPeriod(t *testing.T) {
	var gotFrom, gotTo time.Time
	st := &MockProfitStore{
		ItemBreakdownFunc: func(ctx context.Context, lt models.LedgerType, from, to time.Time, category string, keywords []string) ([]store.ItemTotal, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	app := profitApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/ledger/sales/analysis", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, gotFrom.IsZero())
	assert.Equal(t, 9999, gotTo.Year())

	var result struct {
		Items []store.ItemTotal `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}

func TestAnalyzeItems_InvalidType(t *testing.T) {
	app := profitApp(&MockProfitStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/ledger/misc/analysis", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
