package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/token-session-client/internal/connector"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/userwallet"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

var opts = connector.Options{Provider: connector.ProviderPrivateKey, ChainID: 11155111}

type stubConnector struct {
	wallet wtypes.Wallet
	err    error
	calls  int
}

func (s *stubConnector) Connect(context.Context, connector.Options) (wtypes.Wallet, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.wallet, nil
}

func newWallet(t *testing.T) *userwallet.Wallet {
	t.Helper()
	w, err := userwallet.NewRandomWallet()
	require.NoError(t, err)
	return w
}

func TestNewSessionIsDisconnected(t *testing.T) {
	s := New()
	assert.Equal(t, Disconnected, s.State())
	assert.Nil(t, s.Wallet())
	assert.Empty(t, s.Address())

	_, err := s.RequireWallet()
	assert.Equal(t, tokenerr.KindPrecondition, tokenerr.KindOf(err))
	_, err = s.RequireAddress()
	assert.Equal(t, tokenerr.KindPrecondition, tokenerr.KindOf(err))
}

func TestFetchAddressBeforeConnect(t *testing.T) {
	s := New()
	_, err := s.FetchAddress(context.Background())
	require.Error(t, err)
	assert.Equal(t, tokenerr.KindPrecondition, tokenerr.KindOf(err))
	assert.Equal(t, MsgWalletNotConnected, err.Error())
	assert.Equal(t, Disconnected, s.State())
}

func TestHappyPathTransitions(t *testing.T) {
	w := newWallet(t)
	s := New()

	require.NoError(t, s.Connect(context.Background(), &stubConnector{wallet: w}, opts))
	assert.Equal(t, Connected, s.State())
	_, err := s.RequireAddress()
	assert.Equal(t, tokenerr.KindPrecondition, tokenerr.KindOf(err))

	addr, err := s.FetchAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, w.Address().Hex(), addr)
	assert.Equal(t, AddressResolved, s.State())

	got, err := s.RequireAddress()
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	assert.Equal(t, Snapshot{State: "address_resolved", Address: addr}, s.Snapshot())
}

func TestConnectFailureLeavesStateUnchanged(t *testing.T) {
	s := New()
	err := s.Connect(context.Background(), &stubConnector{err: errors.New("user closed the modal")}, opts)
	require.Error(t, err)
	assert.Equal(t, tokenerr.KindConnection, tokenerr.KindOf(err))
	assert.ErrorContains(t, err, "user closed the modal")
	assert.Equal(t, Disconnected, s.State())

	w := newWallet(t)
	require.NoError(t, s.Connect(context.Background(), &stubConnector{wallet: w}, opts))
	_, err = s.FetchAddress(context.Background())
	require.NoError(t, err)

	err = s.Connect(context.Background(), &stubConnector{err: tokenerr.Connection(nil, "rejected")}, opts)
	assert.Equal(t, "rejected: connection rejected", err.Error())
	assert.Equal(t, AddressResolved, s.State())
	assert.Equal(t, w, s.Wallet())

	err = s.Connect(context.Background(), &stubConnector{}, opts)
	assert.Equal(t, tokenerr.KindConnection, tokenerr.KindOf(err))
}

func TestReconnectKeepsStaleAddress(t *testing.T) {
	first, second := newWallet(t), newWallet(t)
	s := New()
	require.NoError(t, s.Connect(context.Background(), &stubConnector{wallet: first}, opts))
	addr, err := s.FetchAddress(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Connect(context.Background(), &stubConnector{wallet: second}, opts))
	assert.Equal(t, second, s.Wallet())
	assert.Equal(t, addr, s.Address())
	assert.Equal(t, first.Address().Hex(), s.Address())
}

func TestReset(t *testing.T) {
	s := New()
	require.NoError(t, s.Connect(context.Background(), &stubConnector{wallet: newWallet(t)}, opts))
	_, err := s.FetchAddress(context.Background())
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, Disconnected, s.State())
	assert.Empty(t, s.Address())
	assert.Equal(t, "disconnected", s.Snapshot().State)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	w := newWallet(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Connect(context.Background(), &stubConnector{wallet: w}, opts)
			_, _ = s.FetchAddress(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_, _ = s.RequireAddress()
		}()
	}
	wg.Wait()
	assert.Equal(t, AddressResolved, s.State())
	assert.Equal(t, w.Address().Hex(), s.Address())
}
