package shares

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPercent is returned for share amounts outside (0, 100].
var ErrInvalidPercent = errors.New("share amount must be greater than 0 and at most 100")

var (
	hundred   = decimal.NewFromInt(100)
	precision = decimal.NewFromInt(100_000_000)
)

// FormatTokenAmount renders raw token units with the given decimals,
// rounded to places ("1234.56").
func FormatTokenAmount(raw *big.Int, decimals, places int32) string {
	if raw == nil {
		raw = new(big.Int)
	}
	return decimal.NewFromBigInt(raw, -decimals).StringFixed(places)
}

// Cost is the token price of percent (0..100) at valuation:
// valuation * percent / 10^8 / 10^decimals.
func Cost(valuation *big.Int, percent decimal.Decimal, decimals int32) decimal.Decimal {
	if valuation == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(valuation, 0).
		Mul(percent).
		Div(precision).
		Shift(-decimals)
}

// ParsePercent reads a share amount such as "2.5" or "2.5%".
func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPercent, s)
	}
	if !d.IsPositive() || d.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidPercent, d)
	}
	return d, nil
}
