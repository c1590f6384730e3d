package movement

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"plata/internal/domain/connection"
)

// categoryKeywords maps description keywords to expense categories. The first
// rule whose keyword appears in the lowercased description wins, so order
// matters: transfers before payments, payments before fees.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"transferencia", CategoryTransfers},
	{"transfer", CategoryTransfers},
	{"pago", CategoryPayments},
	{"payment", CategoryPayments},
	{"comision", CategoryFees},
	{"fee", CategoryFees},
}

// Categorize returns the category for a movement. Credits are always
// CategoryIncome regardless of description.
func Categorize(movementType, description string) string {
	if strings.Contains(strings.ToLower(movementType), "credit") {
		return CategoryIncome
	}
	desc := strings.ToLower(description)
	for _, rule := range categoryKeywords {
		if strings.Contains(desc, rule.keyword) {
			return rule.category
		}
	}
	return CategoryOther
}

// Normalize converts a raw provider movement into the dashboard shape:
// prefixed id, absolute amount, credit/debit mapped to income/expense, and a
// default description when the provider omits one.
func Normalize(raw connection.RawMovement, source string) Movement {
	movementType := TypeExpense
	if strings.Contains(strings.ToLower(raw.Type), "credit") {
		movementType = TypeIncome
	}

	// Categorize on the provider's description; the display default below
	// must not feed the keyword match.
	category := Categorize(raw.Type, raw.Description)

	description := raw.Description
	if description == "" {
		description = "Movimiento Mercado Pago"
	}

	date := raw.CreatedAt
	if date.IsZero() {
		date = time.Now().UTC()
	}

	rawCopy := make(json.RawMessage, len(raw.Raw))
	copy(rawCopy, raw.Raw)

	return Movement{
		ID:          fmt.Sprintf("%s_%d", source, raw.ID),
		Amount:      math.Abs(raw.Amount),
		Type:        movementType,
		Category:    category,
		Description: description,
		Date:        date,
		Source:      source,
		Raw:         rawCopy,
	}
}

// NormalizePage normalizes a provider page, preserving paging fields.
func NormalizePage(page connection.MovementsPage, source string) Page {
	out := Page{
		Movements: make([]Movement, 0, len(page.Results)),
		Total:     page.Paging.Total,
		Limit:     page.Paging.Limit,
		Offset:    page.Paging.Offset,
	}
	for _, raw := range page.Results {
		out.Movements = append(out.Movements, Normalize(raw, source))
	}
	return out
}
