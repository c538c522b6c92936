package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pgbus/pkg/bus"
	"pgbus/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicyFromConfig(t *testing.T) {
	got := retryPolicy(config.BusConfig{
		CallTimeoutMs:      250,
		RetryIntervalMs:    50,
		RetryMaxAttempts:   4,
		RetryMultiplier:    2,
		RetryMaxIntervalMs: 400,
	})

	require.Equal(t, bus.RetryPolicy{
		Timeout:     250 * time.Millisecond,
		Interval:    50 * time.Millisecond,
		MaxAttempts: 4,
		Multiplier:  2,
		MaxInterval: 400 * time.Millisecond,
	}, got)
}

func TestOpenRuntimeUsesConfiguredStore(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PGBUS_CONFIG", "")
	t.Setenv("PGBUS_LOG_LEVEL", "")
	t.Setenv("PGBUS_LOG_FORMAT", "")
	t.Setenv("PGBUS_WALLET_STORE", filepath.Join(dir, "state", "wallet.db"))

	rt, err := openRuntime("cmd.test", "test.log")
	require.NoError(t, err)

	rec, err := rt.wallets.GetOrCreate()
	require.NoError(t, err)
	rt.log.Info("runtime opened")
	rt.close()

	_, err = os.Stat(filepath.Join(dir, "state", "test.log"))
	require.NoError(t, err)

	rt, err = openRuntime("cmd.test", "")
	require.NoError(t, err)
	defer rt.close()

	again, ok, err := rt.wallets.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec.SecretKey, again.SecretKey)
}

func TestTraceBusStops(t *testing.T) {
	b := bus.New(discardLogger())
	defer b.Close()

	stop := traceBus(context.Background(), b, discardLogger())
	b.Publish(context.Background(), "x", bus.Envelope{Data: 1})
	stop()
	stop()
}
