package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/afero"

	clientconfig "github.com/quantumauth-io/token-session-client/cmd/token-session-client/config"
	"github.com/quantumauth-io/token-session-client/internal/abiassets"
	"github.com/quantumauth-io/token-session-client/internal/chains"
	"github.com/quantumauth-io/token-session-client/internal/connector"
	"github.com/quantumauth-io/token-session-client/internal/ethwallet/userwallet"
	"github.com/quantumauth-io/token-session-client/internal/gateway"
	"github.com/quantumauth-io/token-session-client/internal/helpers"
	clienthttp "github.com/quantumauth-io/token-session-client/internal/http"
	"github.com/quantumauth-io/token-session-client/internal/operations"
	"github.com/quantumauth-io/token-session-client/internal/session"
)

const passwordEnv = "TOKEN_SESSION_WALLET_PASSWORD"

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	log.Info("token-session-client",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := clientconfig.Load()
	if err != nil {
		log.Fatal("failed to parse config", "error", err)
	}

	chainService, err := chains.NewService(cfg.Chains, chains.DialEthclient)
	if err != nil {
		log.Fatal("failed to init chain service", "error", err)
	}
	defer func() {
		if err := chainService.Close(); err != nil {
			log.Error("chain service close failed", "error", err)
		}
	}()

	walletConnector, wipe, err := newConnector(cfg, chainService)
	if err != nil {
		log.Error("wallet setup failed", "error", err)
		return
	}
	defer wipe()

	sess := session.New()
	defer sess.Reset()

	metrics := operations.NewMetrics()
	gw := gateway.New(abiassets.New(cfg.ClientSettings.AssetsDir), chainService)
	ops := operations.New(cfg.Token, sess, walletConnector, gw, metrics)

	gin.SetMode(gin.ReleaseMode)
	router := clienthttp.NewRouter(clienthttp.NewHandler(ops, Version), clienthttp.RouterOptions{
		AllowedOrigins: cfg.ClientSettings.AllowedOrigins,
		Metrics:        metrics.Handler(),
	})
	server := clienthttp.NewServer(cfg.Addr(), router)

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr, "token", cfg.Token.TokenAddress, "chainId", cfg.Token.ChainID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
}

// newConnector registers the configured wallet provider. The returned func
// wipes any password held in memory.
func newConnector(cfg *clientconfig.Config, clients connector.ClientSource) (*connector.Connector, func(), error) {
	conn := connector.New(clients)
	noop := func() {}

	switch cfg.Token.WalletProvider {
	case connector.ProviderPrivateKey:
		log.Info("wallet provider", "provider", connector.ProviderPrivateKey, "key", helpers.MaskSecret(cfg.Wallet.PrivateKey))
		conn.Register(connector.ProviderPrivateKey, connector.PrivateKeySource{HexKey: cfg.Wallet.PrivateKey})
		return conn, noop, nil

	case connector.ProviderKeystore:
		store, err := keystore(cfg.Wallet.KeystorePath)
		if err != nil {
			return nil, noop, err
		}
		pw, err := helpers.PasswordFromEnvOrPrompt(passwordEnv, "Wallet password: ")
		if err != nil {
			return nil, noop, err
		}
		log.Info("wallet provider", "provider", connector.ProviderKeystore, "path", store.Path)

		conn.Register(connector.ProviderKeystore, &connector.KeystoreSource{
			Store: store,
			Password: func() ([]byte, error) {
				return append([]byte(nil), pw...), nil
			},
			Create: cfg.Wallet.CreateIfMissing,
		})
		return conn, func() { helpers.ZeroBytes(pw) }, nil

	default:
		// Connect reports the unknown provider as a connection failure.
		return conn, noop, nil
	}
}

func keystore(path string) (*userwallet.Store, error) {
	if path == "" {
		return userwallet.NewStore()
	}
	return userwallet.NewStoreAt(afero.NewOsFs(), path), nil
}
