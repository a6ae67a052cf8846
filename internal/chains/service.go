package chains

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// Service resolves chain ids to configured RPC endpoints and caches one
// dialled client per chain.
type Service struct {
	cfg  AllChainsConfig
	dial DialFunc

	mu      sync.Mutex
	clients map[uint64]Client
}

// DialEthclient is the production DialFunc.
func DialEthclient(ctx context.Context, url string) (Client, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func NewService(cfg AllChainsConfig, dial DialFunc) (*Service, error) {
	if len(cfg.Networks) == 0 {
		return nil, errors.New("chains config has no networks")
	}
	if dial == nil {
		dial = DialEthclient
	}
	cfg.Normalize()
	return &Service{
		cfg:     cfg,
		dial:    dial,
		clients: make(map[uint64]Client),
	}, nil
}

// Client returns the cached client for chainID, dialling it on first use.
func (s *Service) Client(ctx context.Context, chainID uint64) (Client, error) {
	s.mu.Lock()
	if existing := s.clients[chainID]; existing != nil {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	resolved, err := s.ResolveByChainID(chainID)
	if err != nil {
		return nil, err
	}

	// dial outside the lock
	dialed, err := s.dial(ctx, resolved.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s rpc %q", resolved.NetworkName, resolved.RPCName)
	}

	s.mu.Lock()
	if existing := s.clients[chainID]; existing != nil {
		s.mu.Unlock()
		dialed.Close()
		return existing, nil
	}
	s.clients[chainID] = dialed
	s.mu.Unlock()

	log.Info("rpc client dialled", "network", resolved.NetworkName, "chainId", chainID, "rpc", resolved.RPCName)
	return dialed, nil
}

// Close closes all cached clients (call on shutdown).
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.clients {
		if c != nil {
			c.Close()
		}
		delete(s.clients, id)
	}
	return nil
}

func (s *Service) ResolveByChainID(chainID uint64) (ResolvedChain, error) {
	if chainID == 0 {
		return ResolvedChain{}, errors.New("chainID is 0")
	}

	// deterministic pick when two networks share an id
	names := make([]string, 0, len(s.cfg.Networks))
	for name := range s.cfg.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		network := s.cfg.Networks[name]
		if network.ChainID == chainID {
			return s.resolve(network)
		}
	}
	return ResolvedChain{}, errors.Newf("unknown chainID %d", chainID)
}

func (s *Service) resolve(network NetworkConfig) (ResolvedChain, error) {
	var selected *RPC
	if preferred := strings.TrimSpace(s.cfg.PreferredRPCName); preferred != "" {
		for i := range network.RPCs {
			if strings.EqualFold(network.RPCs[i].Name, preferred) {
				selected = &network.RPCs[i]
				break
			}
		}
	}
	if selected == nil {
		if len(network.RPCs) == 0 {
			return ResolvedChain{}, errors.Newf("network %q has no RPCs configured", network.Name)
		}
		selected = &network.RPCs[0]
	}
	if selected.URL == "" {
		return ResolvedChain{}, errors.Newf("network %q rpc %q url is empty", network.Name, selected.Name)
	}

	return ResolvedChain{
		NetworkName: network.Name,
		ChainID:     network.ChainID,
		Explorer:    network.Explorer,
		RPCName:     selected.Name,
		URL:         selected.URL,
	}, nil
}
