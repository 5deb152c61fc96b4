package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerType distinguishes the two ledger families. Sales and purchase rows
// share one shape but live in separate partitions and never mix.
type LedgerType string

const (
	LedgerSales    LedgerType = "SALES"
	LedgerPurchase LedgerType = "PURCHASE"
)

// Valid reports whether t is one of the closed set of ledger types.
func (t LedgerType) Valid() bool {
	return t == LedgerSales || t == LedgerPurchase
}

// FilterMode controls how keyword filters are applied during ingestion.
type FilterMode string

const (
	FilterAll     FilterMode = "ALL"
	FilterInclude FilterMode = "INCLUDE"
	FilterExclude FilterMode = "EXCLUDE"
)

// Valid reports whether m is one of the closed set of filter modes.
func (m FilterMode) Valid() bool {
	return m == FilterAll || m == FilterInclude || m == FilterExclude
}

// LedgerRow is a single sale or purchase line. Date carries only calendar-day
// information; the time component is pinned to noon UTC so that timezone
// conversion can never shift the day.
type LedgerRow struct {
	ID            uuid.UUID  `json:"id"`
	Type          LedgerType `json:"type"`
	Date          time.Time  `json:"date"`
	ItemName      string     `json:"item_name"`
	Amount        int64      `json:"amount"` // signed currency units, never 0
	Category      string     `json:"category"`
	PaymentMethod string     `json:"payment_method"` // sales only
	Note          string     `json:"note"`
	Confirmed     bool       `json:"confirmed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StagedRow is a ledger row after spreadsheet parsing but before insertion.
type StagedRow struct {
	Date          time.Time `json:"date"`
	ItemName      string    `json:"item_name"`
	Amount        int64     `json:"amount"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"payment_method"`
	Note          string    `json:"note"`
}

// ClassificationRule maps an exact item name to a category for one ledger
// type. The rule table is a set keyed by (item_name, category, type).
type ClassificationRule struct {
	ID        uuid.UUID  `json:"id"`
	ItemName  string     `json:"item_name"`
	Category  string     `json:"category"`
	Type      LedgerType `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}

// ExcelFilter is a globally persisted keyword filter consulted during
// ingestion alongside per-upload runtime keywords.
type ExcelFilter struct {
	ID        uuid.UUID  `json:"id"`
	Keyword   string     `json:"keyword"`
	Type      LedgerType `json:"type"`
	IsInclude bool       `json:"is_include"`
	CreatedAt time.Time  `json:"created_at"`
}

// ColumnMapping is a named, user-owned profile of column-name hints that
// replaces the default header keywords when selected for an upload.
type ColumnMapping struct {
	ID            uuid.UUID  `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Type          LedgerType `json:"type"`
	ColDate       string     `json:"col_date"`
	ColItem       string     `json:"col_item"`
	ColAmount     string     `json:"col_amount"`
	ColCategory   string     `json:"col_category,omitempty"`
	ColPayment    string     `json:"col_payment,omitempty"`
	ColNote       string     `json:"col_note,omitempty"`
	FilterExclude string     `json:"filter_exclude,omitempty"`
	FilterInclude string     `json:"filter_include,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Settlement holds the manual adjustment inputs for one exact period pair.
// Two settlement queries with different boundaries are distinct records.
type Settlement struct {
	ID                 uuid.UUID `json:"id"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	ReportedCashSales  int64     `json:"reported_cash_sales"`
	ManagerRentSupport int64     `json:"manager_rent_support"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Category is a named label per ledger type, kept independently of whether
// any classification rule currently uses it.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Type      LedgerType `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}
