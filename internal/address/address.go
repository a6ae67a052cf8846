// Package address holds the syntactic address check used before transfers.
package address

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Length of a 0x-prefixed 20-byte hex address.
const Length = 42

// IsValid reports whether a has the contract-address shape: "0x" prefix and
// 42 characters in total. No checksum or hex-digit check is done.
func IsValid(a string) bool {
	return a != "" && strings.HasPrefix(a, "0x") && len(a) == Length
}

// ToCommon converts a shape-valid address. Non-hex digits are rejected here
// because go-ethereum would otherwise silently decode them as zero bytes.
func ToCommon(a string) (common.Address, error) {
	if !IsValid(a) {
		return common.Address{}, fmt.Errorf("invalid address %q", a)
	}
	if !common.IsHexAddress(a) {
		return common.Address{}, fmt.Errorf("address %q is not hex", a)
	}
	return common.HexToAddress(a), nil
}

// Normalize returns the checksummed form of a hex address, accepting a
// missing prefix.
func Normalize(a string) (string, error) {
	s := strings.TrimSpace(a)
	if s == "" {
		return "", fmt.Errorf("empty address")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	s = strings.ToLower(s)
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid address: %q", a)
	}
	return common.HexToAddress(s).Hex(), nil
}
