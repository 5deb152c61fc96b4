package services

import (
	"strings"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// headerScanLimit bounds the header search so an adversarially long sheet
// cannot stall an upload.
const headerScanLimit = 100

// ColumnHints carries the user-supplied column names for one upload, either
// typed inline or loaded from a saved mapping profile. Empty fields fall back
// to the default keyword lists.
type ColumnHints struct {
	Date     string
	Item     string
	Amount   string
	Category string
	Payment  string
	Note     string
}

// ColumnIndexes is the resolved header-cell index per logical column.
// Optional columns hold -1 when unresolved.
type ColumnIndexes struct {
	Date     int
	Item     int
	Amount   int
	Category int
	Payment  int
	Note     int
}

// HeaderResolution is the outcome of scanning a sheet for its header row.
type HeaderResolution struct {
	RowIndex int
	Headers  []string
	Score    int
	Columns  ColumnIndexes
}

// columnKeywords holds the default header keywords per logical column.
type columnKeywords struct {
	date     []string
	item     []string
	amount   []string
	category []string
	payment  []string
	note     []string
}

var salesKeywords = columnKeywords{
	date:     []string{"date", "일자", "날짜", "시간", "거래일시"},
	item:     []string{"item", "name", "품목", "상품", "내역", "적요", "보낸분/받는분", "출금표시내용", "가맹점명", "기재내용", "상호명"},
	amount:   []string{"amount", "price", "cost", "금액", "가격", "입금액", "승인금액", "이용금액", "맡기신금액"},
	category: []string{"category", "type", "분류", "구분", "적요"},
	payment:  []string{"payment", "method", "결제", "카드", "수단", "지불", "입금통장"},
	note:     []string{"note", "memo", "비고", "메모"},
}

var purchaseKeywords = columnKeywords{
	date:     []string{"date", "일자", "날짜", "시간", "거래일시"},
	item:     []string{"item", "name", "품목", "상품", "내역", "적요", "보낸분/받는분", "가맹점명"},
	amount:   []string{"amount", "price", "cost", "금액", "가격", "출금액", "이용금액"},
	category: []string{"category", "type", "분류", "구분", "분야"},
	payment:  nil, // purchases carry no payment method column
	note:     []string{"note", "memo", "비고", "메모", "송금메모", "카드명"},
}

func defaultKeywords(t models.LedgerType) columnKeywords {
	if t == models.LedgerPurchase {
		return purchaseKeywords
	}
	return salesKeywords
}

// ResolveHeader scans at most the first 100 rows of the grid and picks the
// row that best resembles a header. Each cell containing any keyword from
// the union of all default lists and all user hints scores +1; a row that
// literally contains the user's date, item or amount hint gets +3 per hint.
// Ties keep the earliest row; a zero maximum falls back to row 0. The
// returned resolution includes the per-column indexes, and the error is a
// *MissingColumnsError when date, item or amount cannot be located.
func ResolveHeader(rows [][]string, t models.LedgerType, hints ColumnHints) (HeaderResolution, error) {
	if len(rows) == 0 {
		return HeaderResolution{}, ErrEmptySheet
	}

	defaults := defaultKeywords(t)
	targets := buildTargetKeywords(defaults, hints)

	best := HeaderResolution{RowIndex: 0}
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		row := trimRow(rows[i])
		score := 0
		for _, cell := range row {
			if cell != "" && containsAny(cell, targets) {
				score++
			}
		}
		if hints.Date != "" && findColumn(row, []string{hints.Date}) >= 0 {
			score += 3
		}
		if hints.Item != "" && findColumn(row, []string{hints.Item}) >= 0 {
			score += 3
		}
		if hints.Amount != "" && findColumn(row, []string{hints.Amount}) >= 0 {
			score += 3
		}
		if score > best.Score {
			best.Score = score
			best.RowIndex = i
			best.Headers = row
		}
	}

	if best.Score == 0 {
		best.RowIndex = 0
		best.Headers = trimRow(rows[0])
	}

	cols, err := resolveColumns(best, defaults, hints)
	if err != nil {
		return HeaderResolution{}, err
	}
	best.Columns = cols
	return best, nil
}

// resolveColumns maps each logical column to a header index, preferring the
// user hint and falling back to the defaults when the hint is absent or not
// found. date/item/amount are required; the rest resolve to -1.
func resolveColumns(h HeaderResolution, defaults columnKeywords, hints ColumnHints) (ColumnIndexes, error) {
	cols := ColumnIndexes{
		Date:     resolveColumn(h.Headers, hints.Date, defaults.date),
		Item:     resolveColumn(h.Headers, hints.Item, defaults.item),
		Amount:   resolveColumn(h.Headers, hints.Amount, defaults.amount),
		Category: resolveColumn(h.Headers, hints.Category, defaults.category),
		Payment:  resolveColumn(h.Headers, hints.Payment, defaults.payment),
		Note:     resolveColumn(h.Headers, hints.Note, defaults.note),
	}

	var missing []MissingColumn
	if cols.Date < 0 {
		missing = append(missing, MissingColumn{Name: "date", Hint: hints.Date, Defaults: defaults.date})
	}
	if cols.Item < 0 {
		missing = append(missing, MissingColumn{Name: "item", Hint: hints.Item, Defaults: defaults.item})
	}
	if cols.Amount < 0 {
		missing = append(missing, MissingColumn{Name: "amount", Hint: hints.Amount, Defaults: defaults.amount})
	}
	if len(missing) > 0 {
		return cols, &MissingColumnsError{HeaderRow: h.RowIndex, Headers: h.Headers, Missing: missing}
	}
	return cols, nil
}

func resolveColumn(headers []string, hint string, defaults []string) int {
	if hint != "" {
		if idx := findColumn(headers, []string{hint}); idx >= 0 {
			return idx
		}
	}
	return findColumn(headers, defaults)
}

// findColumn returns the index of the first header cell that contains any of
// the keywords, case-insensitively, or -1.
func findColumn(headers []string, keywords []string) int {
	for i, h := range headers {
		if h == "" {
			continue
		}
		if containsAny(h, keywords) {
			return i
		}
	}
	return -1
}

func containsAny(cell string, keywords []string) bool {
	lower := strings.ToLower(cell)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func buildTargetKeywords(defaults columnKeywords, hints ColumnHints) []string {
	var targets []string
	seen := make(map[string]struct{})
	add := func(ks ...string) {
		for _, k := range ks {
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			targets = append(targets, k)
		}
	}
	add(hints.Date, hints.Item, hints.Amount, hints.Category, hints.Payment, hints.Note)
	add(defaults.date...)
	add(defaults.item...)
	add(defaults.amount...)
	add(defaults.category...)
	add(defaults.payment...)
	add(defaults.note...)
	return targets
}

func trimRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
