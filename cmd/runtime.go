package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"pgbus/pkg/bus"
	"pgbus/pkg/config"
	"pgbus/pkg/logger"
	"pgbus/pkg/storage"
	"pgbus/pkg/wallet"
)

// runtime holds what every subcommand needs: config, logging and the
// persistent wallet store.
type runtime struct {
	cfg     *config.Config
	log     *slog.Logger
	kv      *storage.SQLite
	wallets *wallet.Store
	logOut  io.Closer
}

// openRuntime loads config and opens the wallet store. A non-empty logFile
// sends logs to that file next to the store instead of stderr.
func openRuntime(component string, logFile string) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var (
		appLogger *slog.Logger
		logOut    *os.File
	)
	if logFile == "" {
		appLogger, err = logger.New(cfg.Logging)
	} else {
		logOut, err = openLogFile(filepath.Join(filepath.Dir(cfg.Wallet.StorePath), logFile))
		if err == nil {
			appLogger, err = logger.NewWriter(cfg.Logging, logOut)
		}
	}
	if err != nil {
		if logOut != nil {
			_ = logOut.Close()
		}
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(appLogger)

	kv, err := storage.OpenSQLite(cfg.Wallet.StorePath)
	if err != nil {
		if logOut != nil {
			_ = logOut.Close()
		}
		return nil, fmt.Errorf("open wallet store: %w", err)
	}

	rt := &runtime{
		cfg:     cfg,
		log:     slog.Default().With("component", component),
		kv:      kv,
		wallets: wallet.NewStore(kv, appLogger),
	}
	if logOut != nil {
		rt.logOut = logOut
	}
	return rt, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func (r *runtime) close() {
	if err := r.kv.Close(); err != nil {
		r.log.Warn("Failed to close wallet store", "error", err)
	}
	if r.logOut != nil {
		_ = r.logOut.Close()
	}
}

// retryPolicy maps bus settings onto the readiness loop.
func retryPolicy(cfg config.BusConfig) bus.RetryPolicy {
	return bus.RetryPolicy{
		Timeout:     cfg.CallTimeout(),
		Interval:    cfg.RetryInterval(),
		MaxAttempts: cfg.RetryMaxAttempts,
		Multiplier:  cfg.RetryMultiplier,
		MaxInterval: cfg.RetryMaxInterval(),
	}
}
