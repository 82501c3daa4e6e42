package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"
	"github.com/spf13/viper"

	"github.com/quantumauth-io/balance-checker/internal/chains"
	"github.com/quantumauth-io/balance-checker/internal/constants"
)

const (
	envRPCURL = "ETH_RPC_URL"
	envPort   = "PORT"
)

type ServerSettings struct {
	LocalHost      string
	Port           string
	AllowedOrigins []string
	EnableAdmin    bool
}

type EthereumSettings struct {
	Network             chains.NetworkConfig
	PreferredRPC        string
	RetryInitialDelayMs int
	RetryMaxDelayMs     int
}

type BalanceSettings struct {
	QueryTimeoutMs int
}

type CacheSettings struct {
	TTLSeconds     int
	Capacity       int
	DedupeInFlight bool
}

type MetricsSettings struct {
	Namespace string
}

type Config struct {
	Server   ServerSettings
	Ethereum EthereumSettings
	Balances BalanceSettings
	Cache    CacheSettings
	Metrics  MetricsSettings
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	cfg, err := utilsconfig.ParseConfig[Config](paths)
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		cfg, err = ParseEmbedded(EmbeddedConfigYAML)
	}
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEmbedded decodes the built-in defaults, used when no config.yaml is
// found on the search paths.
func ParseEmbedded(data []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "read embedded config")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode embedded config")
	}
	return &cfg, nil
}

// ApplyEnv lets the deployment override the node URL and listen port.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if port := strings.TrimSpace(getenv(envPort)); port != "" {
		c.Server.Port = port
	}

	rpcURL := strings.TrimSpace(getenv(envRPCURL))
	if rpcURL == "" {
		return
	}
	if len(c.Ethereum.Network.RPCs) == 0 {
		c.Ethereum.Network.RPCs = []chains.RPC{{Name: "env", URL: rpcURL}}
	} else {
		c.Ethereum.Network.RPCs[0].URL = rpcURL
	}
	// the env endpoint wins over any preferred name
	c.Ethereum.PreferredRPC = c.Ethereum.Network.RPCs[0].Name
}

// Normalize fills defaults for anything left unset.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Server.LocalHost) == "" {
		c.Server.LocalHost = "0.0.0.0"
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		c.Server.Port = "4000"
	}
	if strings.TrimSpace(c.Ethereum.Network.Name) == "" {
		c.Ethereum.Network.Name = "mainnet"
	}
	if c.Balances.QueryTimeoutMs <= 0 {
		c.Balances.QueryTimeoutMs = int(constants.BalanceQueryTimeout / time.Millisecond)
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = int(constants.BalanceCacheTTL / time.Second)
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = constants.BalanceCacheCapacity
	}
	if strings.TrimSpace(c.Metrics.Namespace) == "" {
		c.Metrics.Namespace = constants.MetricsNamespace
	}
}

func (c *Config) Validate() error {
	if len(c.Ethereum.Network.RPCs) == 0 {
		return errors.Newf("Ethereum.Network %q has no rpcs (set %s)", c.Ethereum.Network.Name, envRPCURL)
	}
	for i, rpc := range c.Ethereum.Network.RPCs {
		if strings.TrimSpace(rpc.URL) == "" {
			return errors.Newf("Ethereum.Network.rpcs[%d] (%q) has empty url", i, rpc.Name)
		}
	}
	if c.Ethereum.RetryInitialDelayMs < 0 || c.Ethereum.RetryMaxDelayMs < 0 {
		return errors.New("Ethereum retry delays must not be negative")
	}
	if c.Ethereum.RetryMaxDelayMs < c.Ethereum.RetryInitialDelayMs {
		return errors.Newf("Ethereum.RetryMaxDelayMs (%d) is below RetryInitialDelayMs (%d)",
			c.Ethereum.RetryMaxDelayMs, c.Ethereum.RetryInitialDelayMs)
	}
	return nil
}

func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Balances.QueryTimeoutMs) * time.Millisecond
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) RetryDelays() (initial, max time.Duration) {
	return time.Duration(c.Ethereum.RetryInitialDelayMs) * time.Millisecond,
		time.Duration(c.Ethereum.RetryMaxDelayMs) * time.Millisecond
}
