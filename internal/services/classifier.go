package services

import "github.com/hyunsoolee/jangbu-api/internal/models"

// DefaultCategory labels rows that neither a rule nor the sheet classifies.
const DefaultCategory = "기타"

// Classifier maps raw item names to categories through the stored rule table
// of one ledger type. Rules are exact, case-sensitive matches on the item
// name and always win over whatever category the spreadsheet itself carries.
type Classifier struct {
	rules map[string]string
}

// NewClassifier indexes the rule slice by item name. When the admin has
// recorded the same item twice the earliest rule wins, mirroring the
// insertion-order lookup of the rule table.
func NewClassifier(rules []models.ClassificationRule) *Classifier {
	idx := make(map[string]string, len(rules))
	for _, r := range rules {
		if _, ok := idx[r.ItemName]; !ok {
			idx[r.ItemName] = r.Category
		}
	}
	return &Classifier{rules: idx}
}

// Classify returns the category for an ingested row: the stored rule if one
// exists, else the sheet's own category cell when that column was resolved,
// else the default label.
func (c *Classifier) Classify(itemName, sheetCategory string, hasCategoryColumn bool) string {
	if cat, ok := c.rules[itemName]; ok {
		return cat
	}
	if hasCategoryColumn {
		return sheetCategory
	}
	return DefaultCategory
}
