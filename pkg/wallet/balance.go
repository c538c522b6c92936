package wallet

import (
	"context"
	"log/slog"
	"time"

	"pgbus/pkg/bus"
	"pgbus/pkg/focus"
)

// DefaultBalancePoll is how often the displayed balance is refreshed.
const DefaultBalancePoll = 10 * time.Second

// BalanceSource looks up the lamport balance of an account.
type BalanceSource interface {
	Balance(ctx context.Context, pk PublicKey) (uint64, error)
}

// BalanceRefresher keeps the wallet panel balance current while the host
// has focus.
type BalanceRefresher struct {
	bus      *bus.Bus
	store    *Store
	source   BalanceSource
	focus    focus.Source
	interval time.Duration
	log      *slog.Logger
}

// NewBalanceRefresher wires a refresher. interval <= 0 uses
// DefaultBalancePoll.
func NewBalanceRefresher(b *bus.Bus, store *Store, source BalanceSource, focusSrc focus.Source, interval time.Duration, log *slog.Logger) *BalanceRefresher {
	if interval <= 0 {
		interval = DefaultBalancePoll
	}
	if log == nil {
		log = slog.Default()
	}

	return &BalanceRefresher{
		bus:      b,
		store:    store,
		source:   source,
		focus:    focusSrc,
		interval: interval,
		log:      log.With("component", "wallet.balance"),
	}
}

// Start begins polling. Stop the returned task to end it.
func (r *BalanceRefresher) Start(ctx context.Context) (*focus.Task, error) {
	return focus.Start(ctx, r.focus, r.interval, r.Refresh)
}

// Refresh reads the current balance once and pushes it to the panel. A
// disconnected wallet clears the display.
func (r *BalanceRefresher) Refresh(ctx context.Context) {
	rec, ok, err := r.store.Load()
	if err != nil {
		r.log.Error("Failed to read wallet record", "error", err)
		return
	}
	if !ok || !rec.Connected {
		SetUIBalance(ctx, r.bus, nil)
		return
	}

	w, err := New(rec)
	if err != nil {
		r.log.Error("Wallet record holds an invalid key", "error", err)
		return
	}

	lamports, err := r.source.Balance(ctx, w.PublicKey())
	if err != nil {
		r.log.Warn("Balance lookup failed", "public_key", w.PublicKey().String(), "error", err)
		return
	}

	SetUIBalance(ctx, r.bus, &Balance{Lamports: lamports})
}
