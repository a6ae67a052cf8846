package amount

import (
	"math/big"
	"strings"
)

// FormatUnits converts a base-unit amount to a human string:
// - divides by 10^decimals
// - trims to maxFrac decimal places
// - removes trailing zeros
//
// Examples:
//
//	amount=1234500000000000000, decimals=18 -> "1.2345"
//	amount=1000000000000000000, decimals=18 -> "1"
//	amount=1, decimals=18, maxFrac=6 -> "0"
func FormatUnits(amount *big.Int, decimals uint8, maxFrac int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	out := formatAbs(new(big.Int).Abs(amount), decimals, maxFrac)
	if amount.Sign() < 0 && out != "0" {
		return "-" + out
	}
	return out
}

func formatAbs(abs *big.Int, decimals uint8, maxFrac int) string {
	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart, fracPart := new(big.Int).QuoRem(abs, base, new(big.Int))

	if fracPart.Sign() == 0 || maxFrac <= 0 {
		return intPart.String()
	}

	// left-pad to the full precision before cutting
	fracStr := fracPart.String()
	if len(fracStr) < int(decimals) {
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	}
	if len(fracStr) > maxFrac {
		fracStr = fracStr[:maxFrac]
	}

	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		return intPart.String()
	}
	return intPart.String() + "." + fracStr
}
