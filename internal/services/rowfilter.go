package services

import (
	"strings"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// RowFilter decides whether a raw spreadsheet row survives ingestion. It is
// built once per upload from the requested mode, the per-upload runtime
// keywords and the globally persisted filters of the same ledger type, and
// then consulted per row before any date or amount parsing happens.
type RowFilter struct {
	mode           models.FilterMode
	runtimeExclude []string
	runtimeInclude []string
	globalExclude  []string
	globalInclude  []string
}

// NewRowFilter parses the comma-separated runtime keyword strings and
// normalizes both them and the stored filters to half-width lowercase so a
// keyword matches regardless of which width variant the sheet carries.
func NewRowFilter(mode models.FilterMode, runtimeExclude, runtimeInclude string, global []models.ExcelFilter) *RowFilter {
	f := &RowFilter{
		mode:           mode,
		runtimeExclude: splitKeywords(runtimeExclude),
		runtimeInclude: splitKeywords(runtimeInclude),
	}
	for _, g := range global {
		kw := normalizeKeyword(g.Keyword)
		if kw == "" {
			continue
		}
		if g.IsInclude {
			f.globalInclude = append(f.globalInclude, kw)
		} else {
			f.globalExclude = append(f.globalExclude, kw)
		}
	}
	return f
}

// NormalizeRowContent concatenates the filterable fields of a row into the
// normalized form Allow matches against.
func NormalizeRowContent(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, normalizeKeyword(f))
	}
	return strings.Join(parts, " ")
}

// Allow reports whether a row with the given normalized content passes.
// EXCLUDE drops the row on any keyword hit; INCLUDE keeps it only on at
// least one hit and drops everything when no include keywords exist at all.
func (f *RowFilter) Allow(content string) bool {
	switch f.mode {
	case models.FilterExclude:
		if containsAnyKeyword(content, f.runtimeExclude) {
			return false
		}
		if containsAnyKeyword(content, f.globalExclude) {
			return false
		}
		return true
	case models.FilterInclude:
		includes := append(append([]string{}, f.runtimeInclude...), f.globalInclude...)
		if len(includes) == 0 {
			return false // fail closed
		}
		return containsAnyKeyword(content, includes)
	default: // ALL
		return true
	}
}

func containsAnyKeyword(content string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(content, k) {
			return true
		}
	}
	return false
}

func splitKeywords(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		kw := normalizeKeyword(part)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func normalizeKeyword(s string) string {
	return strings.ToLower(ToHalfWidth(strings.TrimSpace(s)))
}
