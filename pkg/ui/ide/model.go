package ide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pgbus/pkg/focus"
	"pgbus/pkg/view"
	"pgbus/pkg/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 24

// mainContents are the views the "m" key cycles through.
var mainContents = []string{view.MainEditor, "Home", "Tutorial"}

type mountMsg struct{}

type mainChangedMsg struct {
	content string
}

type mainReadyMsg struct {
	content string
	err     error
}

type sidebarMsg struct {
	state view.Sidebar
}

type balanceMsg struct {
	balance *wallet.Balance
}

type walletMsg struct {
	wallet *wallet.Wallet
	err    error
}

type connectMsg struct {
	connected bool
	err       error
}

type model struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger
	// send delivers messages produced by bus handlers back into the
	// program. Handlers run on the publisher's goroutine.
	send func(tea.Msg)

	theme   theme
	spinner spinner.Model
	panel   *view.MainPanel
	unmount []func()

	width       int
	mounted     bool
	mainBusy    bool
	mainContent string
	sidebar     view.Sidebar
	balance     *wallet.Balance
	publicKey   string
	connected   bool
	focused     bool
	lastErr     string
}

func newModel(ctx context.Context, opts Options) *model {
	if opts.Focus == nil {
		opts.Focus = focus.NewState(true)
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	log := opts.Log.With("component", "ui.ide")

	spin := spinner.New()
	spin.Spinner = spinner.Points
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	m := &model{
		ctx:     ctx,
		opts:    opts,
		log:     log,
		send:    func(tea.Msg) {},
		theme:   defaultTheme(),
		spinner: spin,
		width:   100,
		sidebar: view.SidebarClosed,
		focused: opts.Focus.Focused(),
	}

	if opts.Wallets != nil {
		rec, ok, err := opts.Wallets.Load()
		if err != nil {
			log.Warn("Failed to read wallet record", "error", err)
		}
		m.connected = ok && rec.Connected
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(mountCmd(m.opts.MountDelay), m.setMainCmd(m.opts.Home), m.walletCmd())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil
	case tea.FocusMsg:
		m.focused = true
		m.opts.Focus.Set(true)
		return m, nil
	case tea.BlurMsg:
		m.focused = false
		m.opts.Focus.Set(false)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(typed)
	case mountMsg:
		m.mount()
		return m, m.onMountCmd()
	case mainChangedMsg:
		m.mainContent = typed.content
		return m, nil
	case mainReadyMsg:
		m.mainBusy = false
		if typed.err != nil && !errors.Is(typed.err, context.Canceled) {
			m.lastErr = fmt.Sprintf("main view: %v", typed.err)
		}
		return m, nil
	case sidebarMsg:
		m.sidebar = typed.state
		view.NotifySidebarChanged(m.ctx, m.opts.Bus, typed.state)
		return m, nil
	case balanceMsg:
		m.balance = typed.balance
		return m, nil
	case walletMsg:
		if typed.err != nil {
			if !errors.Is(typed.err, context.Canceled) {
				m.lastErr = fmt.Sprintf("wallet: %v", typed.err)
			}
			return m, nil
		}
		m.publicKey = typed.wallet.PublicKey().String()
		return m, nil
	case connectMsg:
		if typed.err != nil {
			m.lastErr = fmt.Sprintf("wallet: %v", typed.err)
			return m, nil
		}
		m.connected = typed.connected
		if !typed.connected {
			m.balance = nil
		}
		return m, nil
	case spinner.TickMsg:
		if m.mounted && !m.mainBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c", "esc", "q":
		return tea.Quit
	case "m":
		return m.setMainCmd(nextMain(m.mainContent))
	case "c":
		return m.connectCmd(!m.connected)
	}

	if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(view.Sidebars) {
		view.SetSidebarState(m.ctx, m.opts.Bus, view.Sidebars[key[0]-'1'])
	}
	return nil
}

// mount attaches the panels to the bus. Requests sent before this point
// are answered by nobody, which is what the readiness loop waits out.
func (m *model) mount() {
	if m.mounted {
		return
	}
	m.mounted = true

	b := m.opts.Bus
	m.panel = view.NewMainPanel(func(content string) {
		m.send(mainChangedMsg{content: content})
	})
	m.mainContent = m.panel.Content()

	sidebar := view.OnSidebarStateSet(b, func(state view.Sidebar) {
		m.send(sidebarMsg{state: state})
	})
	balance := wallet.OnUIBalance(b, func(balance *wallet.Balance) {
		m.send(balanceMsg{balance: balance})
	})
	m.unmount = append(m.unmount, m.panel.Mount(b), sidebar.Dispose, balance)
	m.log.Debug("Panels mounted")
}

// close detaches every mounted panel.
func (m *model) close() {
	for _, fn := range m.unmount {
		fn()
	}
	m.unmount = nil
}

func (m *model) onMountCmd() tea.Cmd {
	fn, ctx := m.opts.OnMount, m.ctx
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}

func (m *model) setMainCmd(content string) tea.Cmd {
	m.mainBusy = true
	ctx, b, policy := m.ctx, m.opts.Bus, m.opts.Retry
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		err := view.SetMain(ctx, b, content, policy)
		return mainReadyMsg{content: content, err: err}
	})
}

func (m *model) walletCmd() tea.Cmd {
	ctx, b, policy := m.ctx, m.opts.Bus, m.opts.Retry
	return func() tea.Msg {
		w, err := wallet.GetWhenReady(ctx, b, policy)
		return walletMsg{wallet: w, err: err}
	}
}

func (m *model) connectCmd(connected bool) tea.Cmd {
	store := m.opts.Wallets
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		rec, err := store.Update(wallet.Patch{Connected: wallet.Bool(connected)})
		return connectMsg{connected: rec.Connected, err: err}
	}
}

func mountCmd(delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return mountMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return mountMsg{}
	})
}

func nextMain(current string) string {
	for i, content := range mainContents {
		if content == current {
			return mainContents[(i+1)%len(mainContents)]
		}
	}
	return mainContents[0]
}

func (m *model) View() string {
	width := max(60, m.width)
	header := m.theme.header.Width(width - 2).Render("⚓ Playground IDE")

	focusLabel := "focused"
	if !m.focused {
		focusLabel = "background · polling paused"
	}
	meta := m.theme.headerMeta.Render(fmt.Sprintf("focus:%s · sidebar:%s", focusLabel, m.sidebar))
	line := m.theme.divider.Width(width - 2).Render(strings.Repeat("═", width-2))

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.mainView(width-sidebarWidth-6))

	status := m.theme.status.Render("1-8 sidebar  ·  m main view  ·  c connect/disconnect  ·  q quit")
	if m.lastErr != "" {
		status = m.theme.statusErr.Render("🚨 " + m.lastErr)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, meta, line, body, m.walletView(width-2), status)
}

func (m *model) sidebarView() string {
	items := make([]string, 0, len(view.Sidebars))
	for i, state := range view.Sidebars {
		label := fmt.Sprintf("%d %s", i+1, state)
		if state == m.sidebar {
			items = append(items, m.theme.sidebarPick.Render(label))
			continue
		}
		items = append(items, m.theme.sidebarItem.Render(label))
	}
	return m.theme.sidebar.Width(sidebarWidth).Render(strings.Join(items, "\n"))
}

func (m *model) mainView(width int) string {
	if !m.mounted || m.mainBusy {
		waiting := m.theme.statusBusy.Render(fmt.Sprintf("%s waiting for main view...", m.spinner.View()))
		return m.theme.main.Width(width).Render(waiting)
	}

	title := m.theme.mainTitle.Render(m.mainContent)
	return m.theme.main.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.theme.hint.Render(mainBody(m.mainContent))))
}

func mainBody(content string) string {
	switch content {
	case view.MainEditor:
		return "No file open."
	case "Home":
		return "Create or import a project to get started."
	case "Tutorial":
		return "Pick a tutorial from the sidebar."
	default:
		return ""
	}
}

func (m *model) walletView(width int) string {
	state := m.theme.disconnected.Render("disconnected")
	if m.connected {
		state = m.theme.connected.Render("connected")
	}

	pk := "-"
	if m.publicKey != "" {
		pk = wallet.ShortenPK(m.publicKey, 4)
	}

	balance := "-"
	if m.balance != nil {
		balance = wallet.FormatBalance(m.balance.SOL())
	}

	row := fmt.Sprintf("%s  %s  ·  %s  ·  %s", m.theme.walletTitle.Render("Wallet"), pk, state, balance)
	return m.theme.walletBox.Width(width).Render(row)
}
