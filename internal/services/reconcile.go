package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// ReconcileStore is the slice of persistence the reconciliation engine needs.
type ReconcileStore interface {
	// FindUnconfirmed returns unconfirmed rows of the type; with keywords it
	// narrows to rows whose item/category/note/payment contains any of them,
	// case-insensitively.
	FindUnconfirmed(ctx context.Context, t models.LedgerType, keywords []string) ([]models.LedgerRow, error)
	// FindConfirmedOnDates returns confirmed rows whose date is one of dates.
	FindConfirmedOnDates(ctx context.Context, t models.LedgerType, dates []time.Time) ([]models.LedgerRow, error)
	// PromoteAndDiscard flips promote to confirmed and deletes discard inside
	// one transaction so a fault can never leave a partial confirm behind.
	PromoteAndDiscard(ctx context.Context, t models.LedgerType, promote, discard []uuid.UUID) error
}

// Reconciler promotes staged rows to confirmed while discarding rows whose
// content signature already exists among confirmed data, so re-confirming an
// overlapping upload can never double-count a transaction.
type Reconciler struct {
	store ReconcileStore
	log   *slog.Logger
}

func NewReconciler(store ReconcileStore, log *slog.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// ConfirmResult reports how many candidates were promoted and how many were
// dropped as duplicates of already-confirmed rows.
type ConfirmResult struct {
	Confirmed int `json:"confirmed"`
	Discarded int `json:"discarded"`
}

// Confirm selects candidate rows (all unconfirmed when keywords is empty,
// keyword-matched otherwise, with each keyword expanded to its width
// variants) and reconciles them against confirmed rows sharing any candidate
// date. The first candidate per signature is promoted; repeats, including
// duplicates within the same batch, are discarded.
func (r *Reconciler) Confirm(ctx context.Context, t models.LedgerType, keywords []string) (ConfirmResult, error) {
	expanded := expandKeywords(keywords)

	candidates, err := r.store.FindUnconfirmed(ctx, t, expanded)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("find candidates: %w", err)
	}
	if len(candidates) == 0 {
		return ConfirmResult{}, nil
	}

	dates := make([]time.Time, 0, len(candidates))
	seenDates := make(map[int64]struct{}, len(candidates))
	for _, c := range candidates {
		key := c.Date.UnixMilli()
		if _, ok := seenDates[key]; ok {
			continue
		}
		seenDates[key] = struct{}{}
		dates = append(dates, c.Date)
	}

	confirmed, err := r.store.FindConfirmedOnDates(ctx, t, dates)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("load confirmed rows: %w", err)
	}

	signatures := make(map[string]struct{}, len(confirmed))
	for _, row := range confirmed {
		signatures[rowSignature(row)] = struct{}{}
	}

	var promote, discard []uuid.UUID
	for _, c := range candidates {
		sig := rowSignature(c)
		if _, dup := signatures[sig]; dup {
			discard = append(discard, c.ID)
			continue
		}
		signatures[sig] = struct{}{} // catches repeats within the batch too
		promote = append(promote, c.ID)
	}

	if err := r.store.PromoteAndDiscard(ctx, t, promote, discard); err != nil {
		return ConfirmResult{}, fmt.Errorf("apply confirm: %w", err)
	}

	r.log.Info("ledger rows reconciled",
		"type", t, "confirmed", len(promote), "discarded", len(discard))
	return ConfirmResult{Confirmed: len(promote), Discarded: len(discard)}, nil
}

// rowSignature is the dedup identity of a row: calendar timestamp, trimmed
// item name and amount.
func rowSignature(row models.LedgerRow) string {
	return fmt.Sprintf("%d_%s_%d", row.Date.UnixMilli(), strings.TrimSpace(row.ItemName), row.Amount)
}

func expandKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out = append(out, SearchVariants(k)...)
	}
	return out
}
