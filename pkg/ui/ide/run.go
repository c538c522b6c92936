package ide

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pgbus/pkg/bus"
	"pgbus/pkg/focus"
	"pgbus/pkg/wallet"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultMountDelay is how long panels wait before attaching to the bus.
const DefaultMountDelay = 500 * time.Millisecond

// Options wires the IDE host to its collaborators.
type Options struct {
	Bus     *bus.Bus
	Wallets *wallet.Store
	// Focus receives terminal focus changes. Pollers gated on it pause
	// while the terminal is in the background.
	Focus      *focus.State
	MountDelay time.Duration
	Retry      bus.RetryPolicy
	// Home is the main view shown once it mounts. Empty selects the editor.
	Home string
	// OnMount runs once after the panels attach, off the event loop.
	OnMount func(context.Context)
	Log     *slog.Logger
}

// Run starts the terminal IDE and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Bus == nil {
		return errors.New("ide: bus is required")
	}

	m := newModel(ctx, opts)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithReportFocus(), tea.WithAltScreen())
	// Bus handlers may run inside Update; sending synchronously from there
	// would block the event loop.
	m.send = func(msg tea.Msg) { go program.Send(msg) }
	defer m.close()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
