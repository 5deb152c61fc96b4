package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// IngestStore is the slice of persistence the ingestion pipeline needs.
type IngestStore interface {
	ListClassificationRules(ctx context.Context, t models.LedgerType) ([]models.ClassificationRule, error)
	ListFilters(ctx context.Context, t models.LedgerType) ([]models.ExcelFilter, error)
	// ReplaceUnconfirmed deletes every unconfirmed row of the type and inserts
	// the staged batch inside one transaction.
	ReplaceUnconfirmed(ctx context.Context, t models.LedgerType, rows []models.StagedRow) (int64, error)
}

// Ingestor turns an uploaded workbook into a staged batch of unconfirmed
// ledger rows: header resolution, keyword filtering, value parsing and
// classification, then a destructive replace of the prior unconfirmed batch.
type Ingestor struct {
	store IngestStore
	log   *slog.Logger
}

func NewIngestor(store IngestStore, log *slog.Logger) *Ingestor {
	return &Ingestor{store: store, log: log}
}

// IngestRequest carries one upload. Password is optional and only consulted
// for encrypted workbooks. FilterExclude/FilterInclude are comma-separated
// runtime keyword strings entered alongside the file.
type IngestRequest struct {
	Type          models.LedgerType
	FileName      string
	File          []byte
	Password      string
	Hints         ColumnHints
	FilterMode    models.FilterMode
	FilterExclude string
	FilterInclude string
}

// IngestResult reports how many rows were staged as unconfirmed.
type IngestResult struct {
	Inserted int64 `json:"inserted"`
}

// Ingest runs the full pipeline. Re-uploading is idempotent with respect to a
// single working batch: the prior unconfirmed rows of the same type are
// dropped and the new batch takes their place. Confirmed rows are untouched.
func (ing *Ingestor) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	if len(req.File) == 0 {
		return IngestResult{}, ErrNoFile
	}

	mode := req.FilterMode
	if !mode.Valid() {
		mode = models.FilterExclude
	}

	f, err := openWorkbook(req.File, req.Password)
	if err != nil {
		return IngestResult{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return IngestResult{}, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return IngestResult{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return IngestResult{}, ErrEmptySheet
	}

	header, err := ResolveHeader(rows, req.Type, req.Hints)
	if err != nil {
		return IngestResult{}, err
	}
	ing.log.Info("header resolved",
		"type", req.Type, "row", header.RowIndex, "score", header.Score)

	rules, err := ing.store.ListClassificationRules(ctx, req.Type)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load classification rules: %w", err)
	}
	globalFilters, err := ing.store.ListFilters(ctx, req.Type)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load filters: %w", err)
	}

	classifier := NewClassifier(rules)
	filter := NewRowFilter(mode, req.FilterExclude, req.FilterInclude, globalFilters)

	staged := ing.stageRows(rows[header.RowIndex+1:], req.Type, header.Columns, filter, classifier)
	if len(staged) == 0 {
		return IngestResult{}, ErrNoValidRows
	}

	inserted, err := ing.store.ReplaceUnconfirmed(ctx, req.Type, staged)
	if err != nil {
		return IngestResult{}, fmt.Errorf("replace unconfirmed batch: %w", err)
	}

	ing.log.Info("ledger batch staged",
		"type", req.Type, "file", req.FileName, "inserted", inserted)
	return IngestResult{Inserted: inserted}, nil
}

// stageRows walks the data rows below the header. Filtering runs before date
// and amount parsing so unparseable-but-filtered rows never surface errors.
func (ing *Ingestor) stageRows(rows [][]string, t models.LedgerType, cols ColumnIndexes, filter *RowFilter, classifier *Classifier) []models.StagedRow {
	var staged []models.StagedRow
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		item := cell(row, cols.Item)
		rawAmount := cell(row, cols.Amount)
		if item == "" && rawAmount == "" {
			continue
		}

		category := cell(row, cols.Category)
		note := cell(row, cols.Note)
		payment := cell(row, cols.Payment)

		content := NormalizeRowContent(item, category, note, payment)
		if !filter.Allow(content) {
			continue
		}

		date, err := ParseDate(cell(row, cols.Date))
		if err != nil {
			continue
		}

		var amount int64
		if t == models.LedgerSales {
			amount = ParseSalesAmount(rawAmount)
		} else {
			amount = ParsePurchaseAmount(rawAmount)
		}
		if amount == 0 {
			continue
		}

		// Only sales rows carry a payment method; without a resolved column
		// the placeholder fills it. Purchase rows keep it empty.
		if t == models.LedgerSales && cols.Payment < 0 {
			payment = DefaultCategory
		}
		staged = append(staged, models.StagedRow{
			Date:          date,
			ItemName:      item,
			Amount:        amount,
			Category:      classifier.Classify(item, category, cols.Category >= 0),
			PaymentMethod: payment,
			Note:          note,
		})
	}
	return staged
}

// openWorkbook opens the uploaded bytes, decrypting when a password was
// supplied. A wrong or missing password on a protected workbook is its own
// user-facing failure, distinct from a generic parse error.
func openWorkbook(data []byte, password string) (*excelize.File, error) {
	var opts []excelize.Options
	if password != "" {
		opts = append(opts, excelize.Options{Password: password})
	}
	f, err := excelize.OpenReader(bytes.NewReader(data), opts...)
	if err != nil {
		if errors.Is(err, excelize.ErrWorkbookPassword) || password != "" {
			return nil, ErrDecryptionFailed
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return f, nil
}

// cell returns the trimmed value at idx, tolerating ragged rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
