// Package connector turns provider options into a connected signing wallet.
package connector

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/token-session-client/internal/chains"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

const (
	ProviderKeystore   = "keystore"
	ProviderPrivateKey = "privatekey"
)

// Options selects the wallet provider and the chain the wallet must be on.
type Options struct {
	Provider string `json:"provider" mapstructure:"provider"`
	ChainID  uint64 `json:"chainId" mapstructure:"chainId"`
}

// WalletSource unlocks one kind of wallet.
type WalletSource interface {
	Unlock(ctx context.Context) (wtypes.Wallet, error)
}

type ClientSource interface {
	Client(ctx context.Context, chainID uint64) (chains.Client, error)
}

type Connector struct {
	sources map[string]WalletSource
	clients ClientSource
}

func New(clients ClientSource) *Connector {
	return &Connector{
		sources: make(map[string]WalletSource),
		clients: clients,
	}
}

// Register makes a wallet source available under name. Names are case-insensitive.
func (c *Connector) Register(name string, src WalletSource) *Connector {
	c.sources[strings.ToLower(strings.TrimSpace(name))] = src
	return c
}

// Connect unlocks the configured wallet and checks that the RPC node serves
// opts.ChainID. Every failure is a connection error.
func (c *Connector) Connect(ctx context.Context, opts Options) (wtypes.Wallet, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	src, ok := c.sources[name]
	if !ok {
		return nil, tokenerr.Connection(errors.Newf("unknown wallet provider %q", opts.Provider), "")
	}

	w, err := src.Unlock(ctx)
	if err != nil {
		return nil, tokenerr.Connection(err, "unlock wallet")
	}
	if w == nil {
		return nil, tokenerr.Connection(nil, "wallet provider returned no wallet")
	}

	client, err := c.clients.Client(ctx, opts.ChainID)
	if err != nil {
		return nil, tokenerr.Connection(err, "rpc unavailable")
	}
	got, err := client.ChainID(ctx)
	if err != nil {
		return nil, tokenerr.Connection(err, "query chain id")
	}
	if !got.IsUint64() || got.Uint64() != opts.ChainID {
		return nil, tokenerr.Connection(
			errors.Newf("rpc serves chain %s, want %d", got.String(), opts.ChainID), "wrong network")
	}

	log.Info("wallet connected", "provider", name, "address", w.Address().Hex(), "chainId", opts.ChainID)
	return w, nil
}
