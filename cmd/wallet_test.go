package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"pgbus/pkg/storage"
	"pgbus/pkg/wallet"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *wallet.Store {
	t.Helper()
	return wallet.NewStore(storage.NewMemory(), discardLogger())
}

type fixedBalance struct {
	lamports uint64
	err      error
}

func (f fixedBalance) Balance(context.Context, wallet.PublicKey) (uint64, error) {
	return f.lamports, f.err
}

func TestShowWalletProvisionsRecord(t *testing.T) {
	store := newTestStore(t)

	var out bytes.Buffer
	require.NoError(t, showWallet(&out, store))

	rec, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	w, err := wallet.New(rec)
	require.NoError(t, err)

	require.Contains(t, out.String(), w.PublicKey().String())
	require.Contains(t, out.String(), "connected:       false")
	require.Contains(t, out.String(), "setup completed: false")
}

func TestSetConnectedAndSetup(t *testing.T) {
	store := newTestStore(t)

	var out bytes.Buffer
	require.NoError(t, setConnected(&out, store, true))
	require.NoError(t, completeSetup(&out, store))
	require.NoError(t, setConnected(&out, store, false))

	require.Equal(t, "Wallet connected.\nWallet setup completed.\nWallet disconnected.\n", out.String())

	rec, _, err := store.Load()
	require.NoError(t, err)
	require.False(t, rec.Connected)
	require.True(t, rec.SetupCompleted)
}

func TestSignMessageRequiresConnection(t *testing.T) {
	store := newTestStore(t)

	err := signMessage(context.Background(), io.Discard, store, 100*time.Millisecond, discardLogger(), "hello")
	require.ErrorIs(t, err, wallet.ErrNotConnected)
}

func TestSignMessageThroughBus(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, setConnected(io.Discard, store, true))

	var out bytes.Buffer
	require.NoError(t, signMessage(context.Background(), &out, store, 100*time.Millisecond, discardLogger(), "hello"))

	w, err := wallet.Load(store)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "signer:    "+w.PublicKey().String(), lines[0])

	sig, err := base58.Decode(strings.TrimPrefix(lines[1], "signature: "))
	require.NoError(t, err)
	require.True(t, wallet.Verify(w.PublicKey(), []byte("hello"), sig))
}

func TestShowBalance(t *testing.T) {
	store := newTestStore(t)

	var out bytes.Buffer
	require.NoError(t, showBalance(context.Background(), &out, store, fixedBalance{lamports: 2_500_000_000}))
	require.True(t, strings.HasSuffix(out.String(), "2.500 SOL\n"), out.String())

	boom := errors.New("boom")
	err := showBalance(context.Background(), io.Discard, store, fixedBalance{err: boom})
	require.ErrorIs(t, err, boom)
}
