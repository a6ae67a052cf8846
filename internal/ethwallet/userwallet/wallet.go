package userwallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/afero"

	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/token-session-client/internal/securefile"
)

const (
	AppName     = "token-session-client"
	WalletFile  = "wallet.json"
	AADConstant = "token-session:userwallet:v1"
)

// Wallet is a locally held secp256k1 key. The JSON form only ever lives
// inside an encrypted securefile envelope.
type Wallet struct {
	Version    int    `json:"version"`
	AddressHex string `json:"address"`
	PrivKeyHex string `json:"priv_key_hex"`
	CreatedAt  string `json:"created_at,omitempty"` // RFC3339
}

var _ wtypes.Wallet = (*Wallet)(nil)

func (w *Wallet) Address() common.Address {
	return common.HexToAddress(w.AddressHex)
}

func (w *Wallet) SignHash(_ context.Context, digest32 []byte) ([]byte, error) {
	if err := wtypes.EnsureDigest32(digest32); err != nil {
		return nil, err
	}
	key, err := w.privateKey()
	if err != nil {
		return nil, err
	}
	return crypto.Sign(digest32, key) // V=0/1
}

func (w *Wallet) privateKey() (*ecdsa.PrivateKey, error) {
	k, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(w.PrivKeyHex, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return k, nil
}

// FromPrivateKeyHex builds an unpersisted wallet around an existing key.
func FromPrivateKeyHex(hexKey string) (*Wallet, error) {
	w := &Wallet{Version: 1, PrivKeyHex: strings.TrimSpace(hexKey)}
	key, err := w.privateKey()
	if err != nil {
		return nil, err
	}
	w.PrivKeyHex = fmt.Sprintf("%x", crypto.FromECDSA(key))
	w.AddressHex = crypto.PubkeyToAddress(key.PublicKey).Hex()
	return w, nil
}

func NewRandomWallet() (*Wallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Wallet{
		Version:    1,
		AddressHex: crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivKeyHex: fmt.Sprintf("%x", crypto.FromECDSA(key)),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Store keeps one encrypted wallet file.
type Store struct {
	Fs   afero.Fs
	Path string
	Opt  securefile.Options
}

// NewStore places the wallet at the canonical config path on the OS filesystem.
func NewStore() (*Store, error) {
	path, err := securefile.DefaultPath(AppName, WalletFile)
	if err != nil {
		return nil, err
	}
	return NewStoreAt(afero.NewOsFs(), path), nil
}

func NewStoreAt(fsys afero.Fs, path string) *Store {
	return &Store{
		Fs:   fsys,
		Path: path,
		// must stay identical for read and write
		Opt: securefile.Options{AAD: []byte(AADConstant)},
	}
}

// Open loads the existing wallet.
func (s *Store) Open(password []byte) (*Wallet, error) {
	w, err := securefile.ReadEncryptedJSON[Wallet](s.Fs, s.Path, password, s.Opt)
	if err != nil {
		return nil, fmt.Errorf("load wallet %s: %w", s.Path, err)
	}
	return &w, nil
}

// Ensure loads the wallet, creating and persisting a new one when the file
// does not exist yet.
func (s *Store) Ensure(password []byte) (*Wallet, error) {
	w, err := s.Open(password)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	nw, err := NewRandomWallet()
	if err != nil {
		return nil, err
	}
	if err := securefile.WriteEncryptedJSON(s.Fs, s.Path, *nw, password, s.Opt); err != nil {
		return nil, err
	}
	return nw, nil
}

// Import persists w under password, replacing any existing file.
func (s *Store) Import(w *Wallet, password []byte) error {
	if w == nil {
		return errors.New("nil wallet")
	}
	return securefile.WriteEncryptedJSON(s.Fs, s.Path, *w, password, s.Opt)
}
