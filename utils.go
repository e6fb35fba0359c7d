package x402

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// BaseUnitDecimals is the fixed denomination of translated amounts (USDC-style, 6 decimals)
const BaseUnitDecimals = 6

const baseUnitScale = 1e6

// ToBaseUnits converts a human readable decimal price ("1.50", "$0.01") into
// an integer string of base units at BaseUnitDecimals.
//
// Unparseable, non-finite and negative prices normalize to "0". The scaled
// value is truncated, never rounded, so float representation error can only
// lower the amount by at most one base unit.
func ToBaseUnits(price string) string {
	s := strings.TrimSpace(price)
	s = strings.TrimPrefix(s, "$")

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return "0"
	}

	scaled := value * baseUnitScale
	if math.IsInf(scaled, 0) {
		return "0"
	}

	amount, _ := big.NewFloat(scaled).Int(nil)
	return amount.String()
}
