package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/quantumauth-io/token-session-client/internal/chains"
	"github.com/quantumauth-io/token-session-client/internal/operations"
)

const (
	AppName   = "token-session-client"
	EnvPrefix = "TOKEN_SESSION"
)

type ClientSettings struct {
	LocalHost      string
	Port           string
	AssetsDir      string
	AllowedOrigins []string
}

type WalletConfig struct {
	// KeystorePath overrides the default encrypted wallet location.
	KeystorePath    string
	CreateIfMissing bool
	// PrivateKey is only read when Token.WalletProvider is "privatekey".
	PrivateKey string
	InfuraKey  string
}

type Config struct {
	ClientSettings ClientSettings
	Token          operations.Settings
	Wallet         WalletConfig
	Chains         chains.AllChainsConfig
}

// Load reads .env, then layers embedded defaults, the first config.yaml
// found in the search paths and TOKEN_SESSION_* environment variables.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", AppName),
		filepath.Join(home, "config"),
		".",
	}
	return LoadFrom(paths)
}

func LoadFrom(paths []string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	v.SetConfigName("config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("merge config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.InjectInfuraKey(cfg.Wallet.InfuraKey); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.ClientSettings.LocalHost = strings.TrimSpace(c.ClientSettings.LocalHost)
	c.ClientSettings.Port = strings.TrimSpace(c.ClientSettings.Port)
	c.ClientSettings.AssetsDir = strings.TrimSpace(c.ClientSettings.AssetsDir)

	c.Token.TokenAddress = strings.TrimSpace(c.Token.TokenAddress)
	c.Token.WalletProvider = strings.ToLower(strings.TrimSpace(c.Token.WalletProvider))
	c.Wallet.KeystorePath = strings.TrimSpace(c.Wallet.KeystorePath)
	c.Wallet.InfuraKey = strings.TrimSpace(c.Wallet.InfuraKey)

	c.Chains.Normalize()
}

// InjectInfuraKey puts an Infura endpoint first in every configured network.
// An empty key is a no-op.
func (c *Config) InjectInfuraKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if strings.ContainsAny(key, "/?# ") {
		return fmt.Errorf("infura key contains invalid characters")
	}

	for name, network := range c.Chains.Networks {
		infura := chains.RPC{Name: "infura", URL: fmt.Sprintf("https://%s.infura.io/v3/%s", name, key)}
		network.RPCs = append([]chains.RPC{infura}, network.RPCs...)
		c.Chains.Networks[name] = network
	}
	if c.Chains.PreferredRPCName == "" {
		c.Chains.PreferredRPCName = "infura"
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ClientSettings.Port == "" {
		return errors.New("ClientSettings.Port is empty")
	}
	if err := c.Token.Validate(); err != nil {
		return fmt.Errorf("Token: %w", err)
	}

	found := false
	for _, n := range c.Chains.Networks {
		if n.ChainID == c.Token.ChainID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no network configured for chain %d", c.Token.ChainID)
	}
	return nil
}

// Addr is the local listen address.
func (c *Config) Addr() string {
	host := c.ClientSettings.LocalHost
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, c.ClientSettings.Port)
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
