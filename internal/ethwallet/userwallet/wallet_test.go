package userwallet

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/token-session-client/internal/securefile"
)

const (
	knownKey  = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	knownAddr = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func testStore() *Store {
	s := NewStoreAt(afero.NewMemMapFs(), "/home/u/.config/token-session-client/wallet.json")
	s.Opt.KDF = securefile.Envelope{Version: 1, ArgonTime: 1, ArgonMemory: 8 * 1024, ArgonThreads: 1, ArgonKeyLen: 32}
	return s
}

func TestFromPrivateKeyHex(t *testing.T) {
	w, err := FromPrivateKeyHex(knownKey)
	require.NoError(t, err)
	assert.Equal(t, knownAddr, w.Address().Hex())

	_, err = FromPrivateKeyHex("0x1234")
	assert.Error(t, err)
}

func TestSignHashRecoversToAddress(t *testing.T) {
	w, err := NewRandomWallet()
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("token session"))
	sig, err := w.SignHash(context.Background(), digest)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.LessOrEqual(t, sig[64], byte(1))

	pub, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), crypto.PubkeyToAddress(*pub))

	_, err = w.SignHash(context.Background(), []byte("short"))
	assert.Error(t, err)
}

func TestStoreEnsureCreatesThenReopens(t *testing.T) {
	s := testStore()
	pw := []byte("password-123")

	created, err := s.Ensure(pw)
	require.NoError(t, err)

	reopened, err := s.Ensure(pw)
	require.NoError(t, err)
	assert.Equal(t, created.Address(), reopened.Address())

	opened, err := s.Open(pw)
	require.NoError(t, err)
	assert.Equal(t, created.AddressHex, opened.AddressHex)
}

func TestStoreWrongPassword(t *testing.T) {
	s := testStore()
	_, err := s.Ensure([]byte("password-123"))
	require.NoError(t, err)

	_, err = s.Ensure([]byte("password-456"))
	assert.ErrorIs(t, err, securefile.ErrInvalidPasswordOrCorrupt)
}

func TestStoreOpenMissing(t *testing.T) {
	_, err := testStore().Open([]byte("password-123"))
	assert.Error(t, err)
}

func TestStoreImport(t *testing.T) {
	s := testStore()
	w, err := FromPrivateKeyHex(knownKey)
	require.NoError(t, err)
	require.NoError(t, s.Import(w, []byte("password-123")))

	got, err := s.Open([]byte("password-123"))
	require.NoError(t, err)
	assert.Equal(t, knownAddr, got.Address().Hex())
}
