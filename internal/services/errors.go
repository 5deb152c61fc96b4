package services

import (
	"errors"
	"fmt"
	"strings"
)

// Recoverable ingestion failures. The upload fails with zero side effects and
// the caller adjusts the file, password or column hints and retries.
var (
	ErrNoFile             = errors.New("no file provided")
	ErrEmptySheet         = errors.New("sheet contains no rows")
	ErrDecryptionFailed   = errors.New("workbook password is missing or incorrect")
	ErrNoValidRows        = errors.New("no valid rows found after filtering and parsing")
	ErrInvalidManualInput = errors.New("settlement adjustment must be numeric")
)

// MissingColumn describes one required logical column that could not be
// resolved, together with the keywords that were searched for it.
type MissingColumn struct {
	Name     string   `json:"name"`
	Hint     string   `json:"hint,omitempty"`
	Defaults []string `json:"defaults"`
}

// MissingColumnsError reports that the date, item or amount column could not
// be located. It carries the detected header row and the searched keyword
// sets so the user can correct their column hints.
type MissingColumnsError struct {
	HeaderRow int
	Headers   []string
	Missing   []MissingColumn
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		if m.Hint != "" {
			parts = append(parts, fmt.Sprintf("%s (hint: %s, defaults: %s)", m.Name, m.Hint, strings.Join(m.Defaults, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("%s (defaults: %s)", m.Name, strings.Join(m.Defaults, ", ")))
		}
	}
	return fmt.Sprintf("missing required columns: %s; found headers in row %d: %s",
		strings.Join(parts, "; "), e.HeaderRow+1, strings.Join(e.Headers, ", "))
}
