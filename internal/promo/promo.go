// Package promo holds the promo-code registry: a static, immutable mapping
// from normalized code to a percentage discount on the cart subtotal.
package promo

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// WelcomeCode is handed out by the newsletter welcome flow.
	WelcomeCode = "FIANKEWI-OVERT31"

	welcomeDiscountPct = 10
)

// Result reports the outcome of validating a single code. Validation never
// fails hard: an unknown or malformed code yields Valid=false with a
// shopper-facing message, not an error.
type Result struct {
	Valid           bool   `json:"valid"`
	DiscountPercent int64  `json:"discount_percent"`
	Message         string `json:"message"`
}

type Registry struct {
	codes map[string]int64
}

// NewRegistry builds the default registry of newsletter welcome codes.
// All codes are stored uppercase; lookups normalize the same way.
func NewRegistry() *Registry {
	codes := map[string]int64{
		WelcomeCode:        welcomeDiscountPct,
		"FIANKEWI-XB8ZU":   welcomeDiscountPct,
		"FIANKEWI-X59SS":   welcomeDiscountPct,
		"FIANKEWI-WDYPL":   welcomeDiscountPct,
		"FIANKEWI-VG1V6":   welcomeDiscountPct,
		"FIANKEWI-UFYBR":   welcomeDiscountPct,
		"FIANKEWI-SQ5RV":   welcomeDiscountPct,
		"FIANKEWI-RP9GB":   welcomeDiscountPct,
		"FIANKEWI-NWO74":   welcomeDiscountPct,
		"FIANKEWI-LTJXS":   welcomeDiscountPct,
		"FIANKEWI-KLM6M":   welcomeDiscountPct,
		"FIANKEWI-KHE4P":   welcomeDiscountPct,
		"FIANKEWI-I3O6C":   welcomeDiscountPct,
		"FIANKEWI-EAGHS":   welcomeDiscountPct,
		"FIANKEWI-BHKVT":   welcomeDiscountPct,
		"FIANKEWI-B5PTR":   welcomeDiscountPct,
		"FIANKEWI-B4PZ5":   welcomeDiscountPct,
		"FIANKEWI-A4K6G":   welcomeDiscountPct,
	}
	return &Registry{codes: codes}
}

// Normalize trims surrounding whitespace and uppercases a code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Registry) Validate(code string) Result {
	normalized := Normalize(code)

	if normalized == "" {
		return Result{Message: "Veuillez entrer un code promo"}
	}

	pct, ok := r.codes[normalized]
	if !ok {
		return Result{Message: "Code promo invalide"}
	}

	return Result{
		Valid:           true,
		DiscountPercent: pct,
		Message:         fmt.Sprintf("Code promo appliqué! %d%% de réduction", pct),
	}
}

// DiscountAmount returns subtotal * pct/100 rounded to two decimal places,
// or zero when the code does not validate. It never returns a negative
// amount for a non-negative subtotal.
func (r *Registry) DiscountAmount(subtotal decimal.Decimal, code string) decimal.Decimal {
	result := r.Validate(code)
	if !result.Valid {
		return decimal.Zero
	}
	pct := decimal.NewFromInt(result.DiscountPercent)
	return subtotal.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
}
