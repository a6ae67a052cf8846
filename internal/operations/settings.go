package operations

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/token-session-client/internal/amount"
	"github.com/quantumauth-io/token-session-client/internal/connector"
)

const (
	DefaultTokenAddress      = "0xFD2b81a411440a678855f484bb0b8d5C46c426E3"
	DefaultChainID           = 11155111
	DefaultABIName           = "ABI/tnt1_abi"
	DefaultMintAmount        = "100"
	DefaultTransferRecipient = "0xC0801ADA1Dc5EE235D154518DCcCd2e41793EbF8"
	DefaultTransferAmount    = "1000"
)

// Settings are the fixed inputs of every workflow. Nothing here is entered
// by the user at trigger time.
type Settings struct {
	TokenAddress      string `json:"tokenAddress" yaml:"tokenAddress" mapstructure:"tokenAddress"`
	ChainID           uint64 `json:"chainId" yaml:"chainId" mapstructure:"chainId"`
	ABIName           string `json:"abiName" yaml:"abiName" mapstructure:"abiName"`
	Decimals          int    `json:"decimals" yaml:"decimals" mapstructure:"decimals"`
	MintAmount        string `json:"mintAmount" yaml:"mintAmount" mapstructure:"mintAmount"`
	TransferRecipient string `json:"transferRecipient" yaml:"transferRecipient" mapstructure:"transferRecipient"`
	TransferAmount    string `json:"transferAmount" yaml:"transferAmount" mapstructure:"transferAmount"`
	WalletProvider    string `json:"walletProvider" yaml:"walletProvider" mapstructure:"walletProvider"`
}

func DefaultSettings() Settings {
	return Settings{
		TokenAddress:      DefaultTokenAddress,
		ChainID:           DefaultChainID,
		ABIName:           DefaultABIName,
		Decimals:          amount.Decimals,
		MintAmount:        DefaultMintAmount,
		TransferRecipient: DefaultTransferRecipient,
		TransferAmount:    DefaultTransferAmount,
		WalletProvider:    connector.ProviderKeystore,
	}
}

// ProviderOptions are the options passed to the wallet connector.
func (s Settings) ProviderOptions() connector.Options {
	return connector.Options{Provider: s.WalletProvider, ChainID: s.ChainID}
}

// Validate checks the settings that cannot be defaulted at use time. The
// transfer recipient and amount are not checked here; Transfer
// checks them on every run.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.TokenAddress) == "" {
		return errors.New("tokenAddress is empty")
	}
	if s.ChainID == 0 {
		return errors.New("chainId is 0")
	}
	if strings.TrimSpace(s.ABIName) == "" {
		return errors.New("abiName is empty")
	}
	if s.Decimals < 0 || s.Decimals > 77 {
		return errors.Newf("decimals %d out of range", s.Decimals)
	}
	if strings.TrimSpace(s.WalletProvider) == "" {
		return errors.New("walletProvider is empty")
	}
	return nil
}
