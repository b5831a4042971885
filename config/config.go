package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	BaseURL     string            `mapstructure:"base_url" default:"https://api.fogswap.io/v1" validate:"required,url"`
	LogLevel    string            `mapstructure:"log_level" default:"warn" validate:"oneof=debug info warn warning error"`
	LogJSON     bool              `mapstructure:"log_json"`
	Timeout     time.Duration     `mapstructure:"timeout" default:"30s"` // per API call; 0 means default, negative disables
	AutoConfirm bool              `mapstructure:"auto_confirm"`
	Watch       WatchConfig       `mapstructure:"watch"`
	AutoDeposit AutoDepositConfig `mapstructure:"auto_deposit"`
}

// WatchConfig controls `status --watch`
type WatchConfig struct {
	Interval     time.Duration `mapstructure:"interval" default:"5s" validate:"gt=0"`
	StopStatuses []string      `mapstructure:"stop_statuses" default:"[\"finished\"]" validate:"min=1"`
}

// AutoDepositConfig holds the wallets used to fund a swap's payin address
type AutoDepositConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Solana  SolanaConfig `mapstructure:"solana"`
	EVM     EVMConfig    `mapstructure:"evm"`
	Monero  MoneroConfig `mapstructure:"monero"`
}

// SolanaConfig configures deposits of SOL and SPL tokens
type SolanaConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RPCUrl        string `mapstructure:"rpc_url" default:"https://api.mainnet-beta.solana.com"`
	PrivateKey    string `mapstructure:"private_key"` // base58
	Commitment    string `mapstructure:"commitment" default:"confirmed"`
	SkipPreflight bool   `mapstructure:"skip_preflight"`
}

// EVMConfig configures deposits on EVM networks, keyed by Fogswap network name (e.g. "eth", "bsc")
type EVMConfig struct {
	Enabled  bool                  `mapstructure:"enabled"`
	Networks map[string]EVMNetwork `mapstructure:"networks"`
}

// EVMNetwork is a single EVM chain
type EVMNetwork struct {
	RPCUrl     string  `mapstructure:"rpc_url"`
	PrivateKey string  `mapstructure:"private_key"` // hex, optional 0x prefix
	ChainID    int64   `mapstructure:"chain_id"`
	GasLimit   *uint64 `mapstructure:"gas_limit"`
	GasPrice   *int64  `mapstructure:"gas_price"` // wei
}

// MoneroConfig configures deposits through monero-wallet-rpc
type MoneroConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	RPCUrl       string `mapstructure:"rpc_url" default:"http://127.0.0.1:18082/json_rpc"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	AccountIndex uint32 `mapstructure:"account_index"`
	Priority     uint32 `mapstructure:"priority"`
	UnlockTime   uint64 `mapstructure:"unlock_time"`
}

// keys that may be set from FOGSWAP_* environment variables
var envKeys = []string{
	"base_url",
	"log_level",
	"log_json",
	"timeout",
	"auto_confirm",
	"watch.interval",
	"watch.stop_statuses",
	"auto_deposit.enabled",
	"auto_deposit.solana.enabled",
	"auto_deposit.solana.rpc_url",
	"auto_deposit.solana.private_key",
	"auto_deposit.solana.commitment",
	"auto_deposit.solana.skip_preflight",
	"auto_deposit.evm.enabled",
	"auto_deposit.monero.enabled",
	"auto_deposit.monero.rpc_url",
	"auto_deposit.monero.username",
	"auto_deposit.monero.password",
	"auto_deposit.monero.account_index",
	"auto_deposit.monero.priority",
}

// Load reads configuration from environment variables and config file.
// When configFile is empty, .fogswap.yaml is looked up in $HOME and the working directory
// and is optional.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".fogswap")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	// Read from environment variables
	v.SetEnvPrefix("FOGSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
