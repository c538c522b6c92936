package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	envConfigPath  = "PGBUS_CONFIG"
	envWalletStore = "PGBUS_WALLET_STORE"
	envRPCEndpoint = "PGBUS_RPC_ENDPOINT"

	configFileName = "pgbus.json"
)

// Config is the root runtime configuration loaded from pgbus.json.
type Config struct {
	Bus     BusConfig     `json:"bus"`
	Wallet  WalletConfig  `json:"wallet"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// BusConfig holds call timeout and readiness retry settings.
type BusConfig struct {
	CallTimeoutMs      int     `json:"call_timeout_ms"`
	RetryIntervalMs    int     `json:"retry_interval_ms"`
	RetryMaxAttempts   uint    `json:"retry_max_attempts"`
	RetryMultiplier    float64 `json:"retry_multiplier"`
	RetryMaxIntervalMs int     `json:"retry_max_interval_ms"`
}

// WalletConfig configures wallet persistence and balance polling.
type WalletConfig struct {
	StorePath     string `json:"store_path"`
	RPCEndpoint   string `json:"rpc_endpoint"`
	BalancePollMs int    `json:"balance_poll_ms"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Bus: BusConfig{
			CallTimeoutMs:   300,
			RetryIntervalMs: 1000,
		},
		Wallet: WalletConfig{
			StorePath:     defaultStorePath(),
			RPCEndpoint:   "https://api.devnet.solana.com",
			BalancePollMs: 10_000,
		},
	}
}

// CallTimeout is the per-call deadline.
func (c BusConfig) CallTimeout() time.Duration {
	return millis(c.CallTimeoutMs)
}

// RetryInterval is the pause between readiness attempts.
func (c BusConfig) RetryInterval() time.Duration {
	return millis(c.RetryIntervalMs)
}

// RetryMaxInterval caps exponential readiness pauses.
func (c BusConfig) RetryMaxInterval() time.Duration {
	return millis(c.RetryMaxIntervalMs)
}

// BalancePoll is the wallet balance refresh period.
func (c WalletConfig) BalancePoll() time.Duration {
	return millis(c.BalancePollMs)
}

// LoadConfig starts from Default, overlays pgbus.json when one is found, and
// applies environment overrides.
func LoadConfig() (*Config, error) {
	cfg := Default()

	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if path := strings.TrimSpace(os.Getenv(envWalletStore)); path != "" {
		cfg.Wallet.StorePath = path
	}
	if endpoint := strings.TrimSpace(os.Getenv(envRPCEndpoint)); endpoint != "" {
		cfg.Wallet.RPCEndpoint = endpoint
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Bus.CallTimeoutMs < 0 {
		errs = append(errs, errors.New("bus.call_timeout_ms must not be negative"))
	}
	if c.Bus.RetryIntervalMs < 0 {
		errs = append(errs, errors.New("bus.retry_interval_ms must not be negative"))
	}
	if c.Bus.RetryMultiplier < 0 {
		errs = append(errs, errors.New("bus.retry_multiplier must not be negative"))
	}
	if c.Wallet.BalancePollMs < 0 {
		errs = append(errs, errors.New("wallet.balance_poll_ms must not be negative"))
	}
	if strings.TrimSpace(c.Wallet.StorePath) == "" {
		errs = append(errs, errors.New("wallet.store_path must not be empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// findConfigPath resolves the active config file location. An empty path
// with no error means no file exists and defaults apply.
//
// Precedence is PGBUS_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("%s does not point to a file: %s", envConfigPath, value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, configFileName),
		filepath.Join(cwd, "config", configFileName),
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}

	return "", nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pgbus", "pgbus.db")
	}
	return filepath.Join(home, ".pgbus", "pgbus.db")
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
