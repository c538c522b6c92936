package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgbus.json")
	content := `{
	  "bus": {"call_timeout_ms": 150, "retry_interval_ms": 250, "retry_max_attempts": 4, "retry_multiplier": 2, "retry_max_interval_ms": 2000},
	  "wallet": {"store_path": "/tmp/pgbus-test.db", "rpc_endpoint": "http://127.0.0.1:8899", "balance_poll_ms": 5000},
	  "logging": {"format": "json", "level": "debug", "add_source": true}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("PGBUS_CONFIG", path)
	t.Setenv("PGBUS_WALLET_STORE", "")
	t.Setenv("PGBUS_RPC_ENDPOINT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if got := cfg.Bus.CallTimeout(); got != 150*time.Millisecond {
		t.Fatalf("bus.CallTimeout() = %v, want 150ms", got)
	}
	if cfg.Bus.RetryMaxAttempts != 4 {
		t.Fatalf("bus.retry_max_attempts = %d, want 4", cfg.Bus.RetryMaxAttempts)
	}
	if got := cfg.Wallet.BalancePoll(); got != 5*time.Second {
		t.Fatalf("wallet.BalancePoll() = %v, want 5s", got)
	}
	if cfg.Wallet.RPCEndpoint != "http://127.0.0.1:8899" {
		t.Fatalf("wallet.rpc_endpoint = %q", cfg.Wallet.RPCEndpoint)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging.format = %q, want %q", cfg.Logging.Format, "json")
	}
	if !cfg.Logging.AddSource {
		t.Fatal("logging.add_source = false, want true")
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PGBUS_CONFIG", "")
	t.Setenv("PGBUS_WALLET_STORE", "")
	t.Setenv("PGBUS_RPC_ENDPOINT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if got := cfg.Bus.CallTimeout(); got != 300*time.Millisecond {
		t.Fatalf("bus.CallTimeout() = %v, want 300ms", got)
	}
	if got := cfg.Bus.RetryInterval(); got != time.Second {
		t.Fatalf("bus.RetryInterval() = %v, want 1s", got)
	}
	if cfg.Wallet.StorePath == "" {
		t.Fatal("expected default wallet store path")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PGBUS_CONFIG", "")
	t.Setenv("PGBUS_WALLET_STORE", "/tmp/override.db")
	t.Setenv("PGBUS_RPC_ENDPOINT", "http://localhost:8899")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Wallet.StorePath != "/tmp/override.db" {
		t.Fatalf("wallet.store_path = %q", cfg.Wallet.StorePath)
	}
	if cfg.Wallet.RPCEndpoint != "http://localhost:8899" {
		t.Fatalf("wallet.rpc_endpoint = %q", cfg.Wallet.RPCEndpoint)
	}
}

func TestLoadConfigInvalidEnvPath(t *testing.T) {
	t.Setenv("PGBUS_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing config path")
	}
}

func TestLoadConfigRejectsNegativeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgbus.json")
	if err := os.WriteFile(path, []byte(`{"bus": {"call_timeout_ms": -1}}`), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PGBUS_CONFIG", path)

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}
