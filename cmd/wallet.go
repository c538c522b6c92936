package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"pgbus/pkg/bus"
	"pgbus/pkg/wallet"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the playground wallet",
	Long:  "Shows and updates the locally stored playground wallet. The keypair is created on first use.",
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the wallet address and state",
			Args:  cobra.NoArgs,
			Run: walletRun(func(cmd *cobra.Command, rt *runtime, _ []string) error {
				return showWallet(cmd.OutOrStdout(), rt.wallets)
			}),
		},
		&cobra.Command{
			Use:   "connect",
			Short: "Connect the wallet",
			Args:  cobra.NoArgs,
			Run: walletRun(func(cmd *cobra.Command, rt *runtime, _ []string) error {
				return setConnected(cmd.OutOrStdout(), rt.wallets, true)
			}),
		},
		&cobra.Command{
			Use:   "disconnect",
			Short: "Disconnect the wallet",
			Args:  cobra.NoArgs,
			Run: walletRun(func(cmd *cobra.Command, rt *runtime, _ []string) error {
				return setConnected(cmd.OutOrStdout(), rt.wallets, false)
			}),
		},
		&cobra.Command{
			Use:   "setup",
			Short: "Mark wallet setup as completed",
			Args:  cobra.NoArgs,
			Run: walletRun(func(cmd *cobra.Command, rt *runtime, _ []string) error {
				return completeSetup(cmd.OutOrStdout(), rt.wallets)
			}),
		},
		&cobra.Command{
			Use:   "sign [message]",
			Short: "Sign a message with the connected wallet",
			Args:  cobra.MinimumNArgs(1),
			Run: walletRun(func(cmd *cobra.Command, rt *runtime, args []string) error {
				message := strings.Join(args, " ")
				return signMessage(cmd.Context(), cmd.OutOrStdout(), rt.wallets, rt.cfg.Bus.CallTimeout(), slog.Default(), message)
			}),
		},
		&cobra.Command{
			Use:   "balance",
			Short: "Print the wallet balance from the configured RPC endpoint",
			Args:  cobra.NoArgs,
			Run: walletRun(func(cmd *cobra.Command, rt *runtime, _ []string) error {
				source, err := wallet.NewRPCBalanceSource(rt.cfg.Wallet.RPCEndpoint, nil)
				if err != nil {
					return err
				}
				return showBalance(cmd.Context(), cmd.OutOrStdout(), rt.wallets, source)
			}),
		},
	)
}

// walletRun opens the runtime around fn and reports its error.
func walletRun(fn func(cmd *cobra.Command, rt *runtime, args []string) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime("cmd.wallet", "")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			return
		}
		defer rt.close()

		if err := fn(cmd, rt, args); err != nil {
			if errors.Is(err, wallet.ErrNotConnected) {
				fmt.Fprintln(cmd.ErrOrStderr(), wallet.ConnectHint)
				return
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wallet: %v\n", err)
		}
	}
}

func showWallet(out io.Writer, store *wallet.Store) error {
	rec, err := store.GetOrCreate()
	if err != nil {
		return err
	}
	w, err := wallet.New(rec)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "address:         %s\n", w.PublicKey())
	fmt.Fprintf(out, "connected:       %t\n", rec.Connected)
	fmt.Fprintf(out, "setup completed: %t\n", rec.SetupCompleted)
	return nil
}

func setConnected(out io.Writer, store *wallet.Store, connected bool) error {
	rec, err := store.Update(wallet.Patch{Connected: wallet.Bool(connected)})
	if err != nil {
		return err
	}

	if rec.Connected {
		fmt.Fprintln(out, "Wallet connected.")
		return nil
	}
	fmt.Fprintln(out, "Wallet disconnected.")
	return nil
}

func completeSetup(out io.Writer, store *wallet.Store) error {
	if _, err := store.Update(wallet.Patch{SetupCompleted: wallet.Bool(true)}); err != nil {
		return err
	}

	fmt.Fprintln(out, "Wallet setup completed.")
	return nil
}

// signMessage mounts the wallet provider on a private bus and signs through
// it, the way panels reach the wallet inside the IDE.
func signMessage(ctx context.Context, out io.Writer, store *wallet.Store, timeout time.Duration, log *slog.Logger, message string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rec, err := store.GetOrCreate()
	if err != nil {
		return err
	}
	if err := wallet.RequireConnected(rec); err != nil {
		return err
	}
	w, err := wallet.New(rec)
	if err != nil {
		return err
	}

	b := bus.New(log)
	defer b.Close()
	unserve := wallet.Serve(b, w)
	defer unserve()

	signer, ok := bus.WithTimeout(wallet.Get(ctx, b), timeout)
	if !ok {
		return errors.New("wallet provider did not answer")
	}

	sig, err := signer.SignMessage(ctx, []byte(message))
	if err != nil {
		return fmt.Errorf("sign message: %w", err)
	}

	fmt.Fprintf(out, "signer:    %s\n", signer.PublicKey())
	fmt.Fprintf(out, "signature: %s\n", base58.Encode(sig))
	return nil
}

func showBalance(ctx context.Context, out io.Writer, store *wallet.Store, source wallet.BalanceSource) error {
	if ctx == nil {
		ctx = context.Background()
	}

	w, err := wallet.Load(store)
	if err != nil {
		return err
	}

	lamports, err := source.Balance(ctx, w.PublicKey())
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}

	fmt.Fprintf(out, "%s  %s\n", wallet.ShortenPK(w.PublicKey().String(), 5), wallet.FormatBalance(wallet.LamportsToSOL(lamports)))
	return nil
}
