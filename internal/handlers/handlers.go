package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// parseLedgerType reads the :type path segment. The set is closed: anything
// but sales/purchase is rejected by the caller.
func parseLedgerType(c fiber.Ctx) (models.LedgerType, bool) {
	t := models.LedgerType(strings.ToUpper(c.Params("type")))
	return t, t.Valid()
}

// splitKeywords turns a comma-separated query value into trimmed keywords,
// dropping blanks.
func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

var errPeriodInverted = errors.New("period end precedes start")
