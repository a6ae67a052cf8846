// Package gateway is the only place that talks to the token contract. Every
// failure it returns is a tokenerr provider error, except a missing ABI asset.
package gateway

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/token-session-client/internal/address"
	"github.com/quantumauth-io/token-session-client/internal/chains"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

type AssetSource interface {
	Load(ctx context.Context, name string) (string, error)
}

type ClientSource interface {
	Client(ctx context.Context, chainID uint64) (chains.Client, error)
}

// Contract is a token contract bound to a chain's RPC client. Handles are
// cheap and are resolved again for every operation.
type Contract struct {
	Address common.Address
	ChainID *big.Int

	bound *bind.BoundContract
}

type Gateway struct {
	assets  AssetSource
	clients ClientSource
}

func New(assets AssetSource, clients ClientSource) *Gateway {
	return &Gateway{assets: assets, clients: clients}
}

// LoadABI returns the raw ABI JSON for a named resource.
func (g *Gateway) LoadABI(ctx context.Context, name string) (string, error) {
	return g.assets.Load(ctx, name)
}

// ResolveContract parses abiJSON and binds it at tokenAddress on chainID.
func (g *Gateway) ResolveContract(ctx context.Context, tokenAddress string, chainID uint64, abiJSON string) (*Contract, error) {
	addr, err := address.ToCommon(tokenAddress)
	if err != nil {
		return nil, tokenerr.Provider(err, "resolve contract")
	}

	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, tokenerr.Provider(err, "parse abi")
	}

	client, err := g.clients.Client(ctx, chainID)
	if err != nil {
		return nil, tokenerr.Provider(err, "rpc client")
	}

	return &Contract{
		Address: addr,
		ChainID: new(big.Int).SetUint64(chainID),
		bound:   bind.NewBoundContract(addr, parsed, client, client, client),
	}, nil
}

// Read performs a constant call and returns the unpacked outputs.
func (g *Gateway) Read(ctx context.Context, c *Contract, method string, args ...any) ([]any, error) {
	if c == nil || c.bound == nil {
		return nil, tokenerr.Provider(nil, "contract not resolved")
	}

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, tokenerr.Provider(err, "call "+method)
	}
	return out, nil
}

// Write signs method(args...) with w and submits it. nativeValue may be nil.
// The returned hash is known once the node accepts the transaction; receipts
// are not awaited.
func (g *Gateway) Write(ctx context.Context, c *Contract, w wtypes.Wallet, method string, nativeValue *big.Int, args ...any) (common.Hash, error) {
	if c == nil || c.bound == nil {
		return common.Hash{}, tokenerr.Provider(nil, "contract not resolved")
	}
	if w == nil {
		return common.Hash{}, tokenerr.Provider(nil, "no wallet to sign with")
	}

	opts := NewTransactOpts(ctx, w, c.ChainID)
	if nativeValue != nil {
		opts.Value = new(big.Int).Set(nativeValue)
	}

	tx, err := c.bound.Transact(opts, method, args...)
	if err != nil {
		return common.Hash{}, tokenerr.Provider(err, "send "+method)
	}

	log.Info("transaction submitted",
		"method", method,
		"contract", c.Address.Hex(),
		"from", opts.From.Hex(),
		"tx", tx.Hash().Hex(),
		"nonce", tx.Nonce(),
	)
	return tx.Hash(), nil
}
