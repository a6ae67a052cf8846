// Package amount converts between human-readable token amounts and the
// integer base units the contract stores.
//
// Base units are always computed with exact integer arithmetic. Decimal
// values use shopspring/decimal, which is arbitrary precision, so a 10^18
// scaling never drifts.
package amount

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

// Decimals is the precision of the token contract.
const Decimals = 18

// ToBaseUnits parses a non-negative decimal numeral and scales it by 10^decimals.
func ToBaseUnits(decimalAmount string, decimals int) (*big.Int, error) {
	s := strings.TrimSpace(decimalAmount)
	if s == "" {
		return nil, tokenerr.Conversion("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, tokenerr.Conversion("amount %q is not a decimal numeral", decimalAmount)
	}
	return DecimalToBaseUnits(d, decimals)
}

// DecimalToBaseUnits scales d by 10^decimals. The result must be a whole number
// of base units.
func DecimalToBaseUnits(d decimal.Decimal, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, tokenerr.Conversion("negative decimals %d", decimals)
	}
	if d.IsNegative() {
		return nil, tokenerr.Conversion("amount %s is negative", d.String())
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, tokenerr.Conversion("amount %s has more than %d fractional digits", d.String(), decimals)
	}
	return scaled.BigInt(), nil
}

// ToDecimal divides base units by 10^decimals. Display only.
func ToDecimal(baseUnits *big.Int, decimals int) decimal.Decimal {
	if baseUnits == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(baseUnits, -int32(decimals))
}

// ParseMintAmount treats literal as a whole-token count of an 18-decimal token.
func ParseMintAmount(literal string) (*big.Int, error) {
	return ParseWholeTokens(literal, Decimals)
}

// ParseWholeTokens computes count * 10^decimals with integer arithmetic only.
func ParseWholeTokens(literal string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, tokenerr.Conversion("negative decimals %d", decimals)
	}
	s := strings.TrimSpace(literal)
	count, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, tokenerr.Conversion("mint amount %q is not a whole number", literal)
	}
	if count.Sign() < 0 {
		return nil, tokenerr.Conversion("mint amount %q is negative", literal)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return count.Mul(count, scale), nil
}

// ParsePositiveDecimal accepts a decimal strictly greater than zero.
func ParsePositiveDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, tokenerr.Validation("Invalid amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, tokenerr.Validation("Invalid amount")
	}
	return d, nil
}
