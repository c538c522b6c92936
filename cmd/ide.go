package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pgbus/pkg/bus"
	"pgbus/pkg/focus"
	"pgbus/pkg/ui/ide"
	"pgbus/pkg/wallet"

	"github.com/spf13/cobra"
)

const ideLogFile = "ide.log"

var (
	ideMountDelay time.Duration
	ideHome       string
	ideTrace      bool
)

var ideCmd = &cobra.Command{
	Use:   "ide",
	Short: "Run the terminal playground IDE",
	Long:  "Starts the terminal IDE. Panels attach to the message bus after a short delay and the wallet balance refreshes while the terminal has focus.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		rt, err := openRuntime("cmd.ide", ideLogFile)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			return
		}
		defer rt.close()

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runIDE(runCtx, rt); err != nil {
			rt.log.Error("IDE failed", "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "ide: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(ideCmd)
	ideCmd.Flags().DurationVar(&ideMountDelay, "mount-delay", ide.DefaultMountDelay, "delay before panels attach to the bus")
	ideCmd.Flags().StringVar(&ideHome, "home", "Home", "main view shown once it mounts")
	ideCmd.Flags().BoolVar(&ideTrace, "trace", false, "log every bus delivery at debug level")
}

func runIDE(ctx context.Context, rt *runtime) error {
	base := slog.Default()
	b := bus.New(base)
	defer b.Close()

	if ideTrace {
		stopTrace := traceBus(ctx, b, rt.log)
		defer stopTrace()
	}

	w, err := wallet.Load(rt.wallets)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}
	unserve := wallet.Serve(b, w)
	defer unserve()

	source, err := wallet.NewRPCBalanceSource(rt.cfg.Wallet.RPCEndpoint, nil)
	if err != nil {
		return err
	}

	focusState := focus.NewState(true)
	refresher := wallet.NewBalanceRefresher(b, rt.wallets, source, focusState, rt.cfg.Wallet.BalancePoll(), base)
	task, err := refresher.Start(ctx)
	if err != nil {
		return fmt.Errorf("start balance polling: %w", err)
	}
	defer task.Stop()

	rt.log.Info("IDE started", "public_key", w.PublicKey().String(), "rpc_endpoint", rt.cfg.Wallet.RPCEndpoint)
	return ide.Run(ctx, ide.Options{
		Bus:        b,
		Wallets:    rt.wallets,
		Focus:      focusState,
		MountDelay: ideMountDelay,
		Retry:      retryPolicy(rt.cfg.Bus),
		Home:       ideHome,
		OnMount:    refresher.Refresh,
		Log:        base,
	})
}

// traceBus logs deliveries until ctx ends or the returned stop is called.
func traceBus(ctx context.Context, b *bus.Bus, log *slog.Logger) func() {
	deliveries, cancel := b.Tap(ctx, 0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range deliveries {
			log.Debug("Bus delivery", "name", d.Name, "subscribers", d.Subscribers, "failed", d.Envelope.Failed())
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
