package gateway

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
)

// NewTransactOpts builds per-call transact options whose signer delegates to
// the wallet. Gas, fees and nonce are left for the node to fill in.
func NewTransactOpts(ctx context.Context, w wtypes.Wallet, chainID *big.Int) *bind.TransactOpts {
	from := w.Address()
	signer := types.LatestSignerForChainID(chainID)

	return &bind.TransactOpts{
		From:    from,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != from {
				return nil, bind.ErrNotAuthorized
			}
			sig, err := w.SignHash(ctx, signer.Hash(tx).Bytes())
			if err != nil {
				return nil, fmt.Errorf("wallet sign: %w", err)
			}
			return tx.WithSignature(signer, sig)
		},
	}
}
