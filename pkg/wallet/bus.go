package wallet

import (
	"context"

	"pgbus/pkg/bus"
)

var (
	walletNames  = bus.GetRun(bus.TopicWallet.Name())
	balanceNames = bus.GetSet(bus.TopicWalletUIBalance.Name())
)

// Balance is the balance shown in the wallet panel. A nil *Balance clears
// the display.
type Balance struct {
	Lamports uint64
}

// SOL returns the balance in SOL.
func (b Balance) SOL() float64 {
	return LamportsToSOL(b.Lamports)
}

// Serve mounts w as the wallet provider. Every request on the wallet "get"
// endpoint is answered with w. Call the returned function to unmount.
func Serve(b *bus.Bus, w *Wallet) func() {
	return bus.Serve(b, walletNames.Get, func(context.Context, any) (any, error) {
		return w, nil
	})
}

// Get requests the mounted wallet. Wrap the future with bus.WithTimeout.
func Get(ctx context.Context, b *bus.Bus) *bus.Future[*Wallet] {
	return bus.Call[*Wallet](ctx, b, walletNames.Get, nil)
}

// SetUIBalance pushes a balance to the wallet panel; nil clears it.
func SetUIBalance(ctx context.Context, b *bus.Bus, balance *Balance) bool {
	return bus.Emit(ctx, b, balanceNames.Set, balance)
}

// OnUIBalance is the panel side of SetUIBalance.
func OnUIBalance(b *bus.Bus, fn func(*Balance)) func() {
	return bus.On(b, balanceNames.Set, fn)
}

// GetWhenReady waits for a wallet provider to mount and returns its wallet.
func GetWhenReady(ctx context.Context, b *bus.Bus, policy bus.RetryPolicy) (*Wallet, error) {
	return bus.CallUntilReady[*Wallet](ctx, b, walletNames.Get, nil, policy)
}
