package scanning

import (
	"regexp"
	"strconv"
	"strings"
)

// minItemNameLength is the shortest cleaned name that is kept. Anything
// shorter is OCR noise (totals, tax labels, line codes).
const minItemNameLength = 3

var (
	// weightRe matches an explicit weight expression like "0,156 kg" or "500g".
	// The captured value overrides whatever quantity the OCR detected.
	weightRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(kg|g)\b`)

	// priceRe matches price and unit-price tokens: "1.99 €", "€2.50",
	// "3 eur", "1.99 €/kg", "2,50/kg".
	priceRe = regexp.MustCompile(`€\s*\d+(?:[.,]\d+)?|\d+(?:[.,]\d+)?\s*(?:€|eur\b|/kg)(?:/kg)?`)

	// unitRe matches residual packaging sizes like "33cl", "1.5 l", "250ml".
	unitRe = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:kg|g|cl|ml|l)\b`)

	// promoRe matches marketing noise: promotion keywords, multipack
	// patterns ("2 x 6", "x3") and percentage discounts ("-30%").
	promoRe = regexp.MustCompile(`\b(?:promo|offre|maxi|bio)\b|format\s+familial|grand\s+format|\d+\s*x\s*\d+|\bx\d+\b|-?\d+%`)

	nonAlphaRe   = regexp.MustCompile(`[^a-z\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanItem normalizes a raw OCR receipt line into a canonical item name
// and quantity. It returns false when the line should be discarded
// (empty or too short after cleaning, i.e. not a real product line).
//
// An explicit weight on the line ("0,156 kg") wins over the detected
// quantity and is returned in kilograms. The function is pure: same
// input always yields the same output.
func CleanItem(raw string, qty float64) (string, float64, bool) {
	if raw == "" {
		return "", 0, false
	}

	item := strings.ToLower(strings.TrimSpace(raw))
	item = whitespaceRe.ReplaceAllString(item, " ")

	// Extract an explicit weight before stripping prices, since unit
	// prices ("€/kg") also mention mass units.
	if m := weightRe.FindStringSubmatchIndex(item); m != nil {
		value := item[m[2]:m[3]]
		unit := item[m[4]:m[5]]
		if kg, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err == nil {
			if unit == "g" {
				kg /= 1000
			}
			qty = kg
			item = item[:m[0]] + item[m[1]:]
		}
	}

	item = priceRe.ReplaceAllString(item, "")
	item = unitRe.ReplaceAllString(item, "")
	item = promoRe.ReplaceAllString(item, "")
	item = nonAlphaRe.ReplaceAllString(item, "")
	item = strings.TrimSpace(whitespaceRe.ReplaceAllString(item, " "))

	if len(item) < minItemNameLength {
		return "", 0, false
	}

	return item, qty, true
}
