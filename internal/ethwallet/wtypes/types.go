package wtypes

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Wallet is a connected signing account.
//   - Address is the account the wallet signs for.
//   - SignHash signs a 32-byte digest and returns a 65-byte signature (R || S || V),
//     where V is 0/1 as produced by go-ethereum's crypto.Sign.
type Wallet interface {
	Address() common.Address
	SignHash(ctx context.Context, digest32 []byte) ([]byte, error)
}

func EnsureDigest32(d []byte) error {
	if len(d) != 32 {
		return fmt.Errorf("digest must be 32 bytes, got %d", len(d))
	}
	return nil
}
