package services

import (
	"time"

	"github.com/shopspring/decimal"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount (dollars) to cents, rounding half away from zero.
// amount must not exceed MaxAmount.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

// DateStamp returns the UTC calendar date of now as YYYY-MM-DD.
func DateStamp(now time.Time) string {
	return now.UTC().Format(time.DateOnly)
}
