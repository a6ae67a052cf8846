// Package operations runs the user-triggered token workflows. Each workflow
// guards on session state, resolves the contract, performs one call and
// reduces the result to a single display message.
package operations

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/token-session-client/internal/address"
	"github.com/quantumauth-io/token-session-client/internal/amount"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/token-session-client/internal/gateway"
	"github.com/quantumauth-io/token-session-client/internal/session"
	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

const (
	OpConnect      = "connect"
	OpFetchAddress = "fetch_address"
	OpFetchBalance = "fetch_balance"
	OpMint         = "mint"
	OpTransfer     = "transfer"
)

const (
	MsgConnected       = "Connect successfully"
	MsgInvalidReceiver = "Invalid recipient address"
	MsgInvalidAmount   = "Invalid amount"
)

// Gateway is the contract access the workflows need.
type Gateway interface {
	LoadABI(ctx context.Context, name string) (string, error)
	ResolveContract(ctx context.Context, tokenAddress string, chainID uint64, abiJSON string) (*gateway.Contract, error)
	Read(ctx context.Context, c *gateway.Contract, method string, args ...any) ([]any, error)
	Write(ctx context.Context, c *gateway.Contract, w wtypes.Wallet, method string, nativeValue *big.Int, args ...any) (common.Hash, error)
}

// Outcome is the only thing a workflow hands back to the display.
type Outcome struct {
	Operation string        `json:"operation"`
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Kind      tokenerr.Kind `json:"kind,omitempty"`
}

type TokenOperations struct {
	settings  Settings
	session   *session.Session
	connector session.Connector
	gateway   Gateway
	metrics   *Metrics

	// one workflow at a time
	mu sync.Mutex
}

// New wires the orchestrator. metrics may be nil.
func New(settings Settings, sess *session.Session, conn session.Connector, gw Gateway, metrics *Metrics) *TokenOperations {
	return &TokenOperations{
		settings:  settings,
		session:   sess,
		connector: conn,
		gateway:   gw,
		metrics:   metrics,
	}
}

func (o *TokenOperations) Settings() Settings {
	return o.settings
}

// State reports the session for display.
func (o *TokenOperations) State() session.Snapshot {
	return o.session.Snapshot()
}

func (o *TokenOperations) Connect(ctx context.Context) Outcome {
	return o.run(ctx, OpConnect, func(ctx context.Context, opID string) (string, error) {
		if err := o.session.Connect(ctx, o.connector, o.settings.ProviderOptions()); err != nil {
			return "Connect failed: " + err.Error(), err
		}
		return MsgConnected, nil
	})
}

func (o *TokenOperations) FetchAddress(ctx context.Context) Outcome {
	return o.run(ctx, OpFetchAddress, func(ctx context.Context, opID string) (string, error) {
		addr, err := o.session.FetchAddress(ctx)
		if err != nil {
			return err.Error(), err
		}
		return "Wallet Address: " + addr, nil
	})
}

func (o *TokenOperations) FetchBalance(ctx context.Context) Outcome {
	return o.run(ctx, OpFetchBalance, func(ctx context.Context, opID string) (string, error) {
		if _, err := o.session.RequireWallet(); err != nil {
			return err.Error(), err
		}
		holder, err := o.session.RequireAddress()
		if err != nil {
			return err.Error(), err
		}

		raw, err := o.balanceOf(ctx, holder)
		if err != nil {
			return "Error: " + err.Error(), err
		}

		log.Info("balance read",
			"op_id", opID,
			"holder", holder,
			"raw", raw.String(),
			"approx", amount.FormatUnits(raw, uint8(o.settings.Decimals), 6),
		)
		return "Balance: " + amount.ToDecimal(raw, o.settings.Decimals).String(), nil
	})
}

// Mint checks only the resolved address. A missing wallet surfaces as a
// provider error from the gateway.
func (o *TokenOperations) Mint(ctx context.Context) Outcome {
	return o.run(ctx, OpMint, func(ctx context.Context, opID string) (string, error) {
		to, err := o.session.RequireAddress()
		if err != nil {
			return err.Error(), err
		}

		fail := func(err error) (string, error) { return "Mint failed: " + err.Error(), err }

		units, err := amount.ParseWholeTokens(o.settings.MintAmount, o.settings.Decimals)
		if err != nil {
			return fail(err)
		}

		hash, err := o.write(ctx, opID, o.session.Wallet(), "mint", common.HexToAddress(to), units)
		if err != nil {
			return fail(err)
		}
		return "Mint Successfully! Tx: " + hash.Hex(), nil
	})
}

func (o *TokenOperations) Transfer(ctx context.Context) Outcome {
	return o.run(ctx, OpTransfer, func(ctx context.Context, opID string) (string, error) {
		w, err := o.session.RequireWallet()
		if err != nil {
			return err.Error(), err
		}
		if _, err := o.session.RequireAddress(); err != nil {
			return err.Error(), err
		}

		recipient := o.settings.TransferRecipient
		if !address.IsValid(recipient) {
			return MsgInvalidReceiver, tokenerr.Validation(MsgInvalidReceiver)
		}
		value, err := amount.ParsePositiveDecimal(o.settings.TransferAmount)
		if err != nil {
			return MsgInvalidAmount, err
		}

		fail := func(err error) (string, error) { return "Transfer failed: " + err.Error(), err }

		units, err := amount.DecimalToBaseUnits(value, o.settings.Decimals)
		if err != nil {
			return fail(err)
		}
		to, err := address.ToCommon(recipient)
		if err != nil {
			return fail(tokenerr.Provider(err, "encode recipient"))
		}

		if _, err := o.write(ctx, opID, w, "transfer", to, units); err != nil {
			return fail(err)
		}
		return fmt.Sprintf("Transfer %s tokens to %s Successfully!", value.String(), recipient), nil
	})
}

func (o *TokenOperations) contract(ctx context.Context) (*gateway.Contract, error) {
	abiJSON, err := o.gateway.LoadABI(ctx, o.settings.ABIName)
	if err != nil {
		return nil, err
	}
	return o.gateway.ResolveContract(ctx, o.settings.TokenAddress, o.settings.ChainID, abiJSON)
}

func (o *TokenOperations) balanceOf(ctx context.Context, holder string) (*big.Int, error) {
	c, err := o.contract(ctx)
	if err != nil {
		return nil, err
	}
	out, err := o.gateway.Read(ctx, c, "balanceOf", common.HexToAddress(holder))
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, tokenerr.Provider(errors.Newf("got %d outputs", len(out)), "balanceOf")
	}
	raw, ok := out[0].(*big.Int)
	if !ok || raw == nil {
		return nil, tokenerr.Provider(errors.Newf("unexpected output type %T", out[0]), "balanceOf")
	}
	return raw, nil
}

func (o *TokenOperations) write(ctx context.Context, opID string, w wtypes.Wallet, method string, args ...any) (common.Hash, error) {
	c, err := o.contract(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := o.gateway.Write(ctx, c, w, method, big.NewInt(0), args...)
	if err != nil {
		return common.Hash{}, err
	}
	log.Info("token write sent", "op_id", opID, "method", method, "tx", hash.Hex())
	return hash, nil
}

type workflow func(ctx context.Context, opID string) (string, error)

func (o *TokenOperations) run(ctx context.Context, op string, fn workflow) (out Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()

	opID := uuid.NewString()
	start := time.Now()
	log.Info("operation started", "op", op, "op_id", opID)

	out = Outcome{Operation: op}
	defer func() {
		if r := recover(); r != nil {
			err := tokenerr.Provider(errors.Newf("panic: %v", r), "")
			out = Outcome{Operation: op, Message: err.Error(), Kind: tokenerr.KindProvider}
			log.Error("operation panicked", "op", op, "op_id", opID, "error", fmt.Sprintf("%+v", err))
		}
		o.metrics.observe(out, time.Since(start))
		o.metrics.setState(int(o.session.State()))
	}()

	msg, err := fn(ctx, opID)
	out.Message = msg
	if err != nil {
		out.Kind = tokenerr.KindOf(err)
		log.Error("operation failed",
			"op", op,
			"op_id", opID,
			"kind", string(out.Kind),
			"elapsed", time.Since(start).String(),
			"error", fmt.Sprintf("%+v", err),
		)
		return out
	}

	out.Success = true
	log.Info("operation finished", "op", op, "op_id", opID, "elapsed", time.Since(start).String(), "message", msg)
	return out
}
