package utils

import (
	"math"
	"strings"
)

// RoundCurrency rounds an amount to the nearest whole currency unit
func RoundCurrency(amount float64) float64 {
	return math.Round(amount)
}

// NormalizeCouponCode upper-cases and trims a coupon code so lookups and
// uniqueness checks are case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeUsername lower-cases and trims a store username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ClampStock clamps a stock quantity to be non-negative
func ClampStock(quantity int) int {
	if quantity < 0 {
		return 0
	}
	return quantity
}
