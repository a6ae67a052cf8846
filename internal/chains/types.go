package chains

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// Client is the RPC surface the token session needs: contract calls,
// transaction submission and the node's chain id.
type Client interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// DialFunc opens a Client for an RPC url.
type DialFunc func(ctx context.Context, url string) (Client, error)

type AllChainsConfig struct {
	Networks         map[string]NetworkConfig `json:"networks" yaml:"networks" mapstructure:"networks"`
	PreferredRPCName string                   `json:"preferredRPC" yaml:"preferredRPC" mapstructure:"preferredRPC"`
}

// NetworkConfig describes a network and its RPC endpoints.
type NetworkConfig struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	ChainID  uint64 `json:"chainId" yaml:"chainId" mapstructure:"chainId"`
	RPCs     []RPC  `json:"rpcs" yaml:"rpcs" mapstructure:"rpcs"`
	Explorer string `json:"explorer" yaml:"explorer" mapstructure:"explorer"`
}

type RPC struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	URL  string `json:"url" yaml:"url" mapstructure:"url"`
}

type ResolvedChain struct {
	NetworkName string
	ChainID     uint64
	Explorer    string
	RPCName     string
	URL         string
}

// Normalize fills each network's Name from its map key and trims fields.
func (c *AllChainsConfig) Normalize() {
	if c == nil {
		return
	}
	for key, n := range c.Networks {
		n.Name = strings.ToLower(strings.TrimSpace(key))
		n.Explorer = strings.TrimSpace(n.Explorer)
		for i := range n.RPCs {
			n.RPCs[i].Name = strings.TrimSpace(n.RPCs[i].Name)
			n.RPCs[i].URL = strings.TrimSpace(n.RPCs[i].URL)
		}
		c.Networks[key] = n
	}
}
