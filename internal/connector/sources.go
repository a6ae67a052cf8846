package connector

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/token-session-client/internal/ethwallet/userwallet"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/token-session-client/internal/helpers"
)

// KeystoreSource opens the encrypted wallet file. With Create set, a missing
// file is replaced by a freshly generated wallet.
type KeystoreSource struct {
	Store    *userwallet.Store
	Password func() ([]byte, error)
	Create   bool
}

func (k *KeystoreSource) Unlock(ctx context.Context) (wtypes.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k.Store == nil || k.Password == nil {
		return nil, errors.New("keystore not configured")
	}

	pw, err := k.Password()
	if err != nil {
		return nil, errors.Wrap(err, "read password")
	}
	defer helpers.ZeroBytes(pw)

	open := k.Store.Open
	if k.Create {
		open = k.Store.Ensure
	}
	w, err := open(pw)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// PrivateKeySource wraps a raw hex key, typically from the environment.
type PrivateKeySource struct {
	HexKey string
}

func (p PrivateKeySource) Unlock(ctx context.Context) (wtypes.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.HexKey == "" {
		return nil, errors.New("no private key configured")
	}
	w, err := userwallet.FromPrivateKeyHex(p.HexKey)
	if err != nil {
		return nil, errors.Wrap(err, "private key")
	}
	return w, nil
}
