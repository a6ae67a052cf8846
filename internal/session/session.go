// Package session holds the connected wallet and its resolved address for
// one user session.
package session

import (
	"context"
	"sync"

	"github.com/quantumauth-io/token-session-client/internal/connector"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

const (
	MsgWalletNotConnected = "wallet not connected"
	MsgAddressNotResolved = "wallet address not resolved"
)

type State int

const (
	Disconnected State = iota
	Connected
	AddressResolved
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case AddressResolved:
		return "address_resolved"
	default:
		return "disconnected"
	}
}

type Connector interface {
	Connect(ctx context.Context, opts connector.Options) (wtypes.Wallet, error)
}

// Session moves Disconnected -> Connected -> AddressResolved. A repeated
// Connect swaps the wallet but keeps any previously resolved address; only
// Reset clears it.
type Session struct {
	// transition serializes Connect/FetchAddress/Reset end to end
	transition sync.Mutex

	mu      sync.RWMutex
	wallet  wtypes.Wallet
	address string
}

func New() *Session {
	return &Session{}
}

// Connect asks c for a wallet. On failure the session is left untouched.
func (s *Session) Connect(ctx context.Context, c Connector, opts connector.Options) error {
	s.transition.Lock()
	defer s.transition.Unlock()

	w, err := c.Connect(ctx, opts)
	if err == nil && w == nil {
		err = tokenerr.Connection(nil, "provider returned no wallet")
	}
	if err != nil {
		if !tokenerr.Is(err, tokenerr.KindConnection) {
			err = tokenerr.Connection(err, "")
		}
		return err
	}

	s.mu.Lock()
	s.wallet = w
	s.mu.Unlock()
	return nil
}

// FetchAddress reads the connected wallet's account and stores it.
func (s *Session) FetchAddress(ctx context.Context) (string, error) {
	s.transition.Lock()
	defer s.transition.Unlock()

	w, err := s.RequireWallet()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", tokenerr.Provider(err, "fetch address")
	}

	addr := w.Address().Hex()

	s.mu.Lock()
	s.address = addr
	s.mu.Unlock()
	return addr, nil
}

func (s *Session) RequireWallet() (wtypes.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wallet == nil {
		return nil, tokenerr.Precondition(MsgWalletNotConnected)
	}
	return s.wallet, nil
}

func (s *Session) RequireAddress() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wallet == nil || s.address == "" {
		return "", tokenerr.Precondition(MsgAddressNotResolved)
	}
	return s.address, nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.wallet == nil:
		return Disconnected
	case s.address == "":
		return Connected
	default:
		return AddressResolved
	}
}

// Wallet may be nil.
func (s *Session) Wallet() wtypes.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet
}

func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

type Snapshot struct {
	State   string `json:"state"`
	Address string `json:"address,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.stateLocked().String(), Address: s.address}
}

// Reset ends the session and returns it to Disconnected.
func (s *Session) Reset() {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.mu.Lock()
	s.wallet = nil
	s.address = ""
	s.mu.Unlock()
}
