package ide

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for IDE regions.
type theme struct {
	header       lipgloss.Style
	headerMeta   lipgloss.Style
	divider      lipgloss.Style
	sidebar      lipgloss.Style
	sidebarItem  lipgloss.Style
	sidebarPick  lipgloss.Style
	main         lipgloss.Style
	mainTitle    lipgloss.Style
	walletBox    lipgloss.Style
	walletTitle  lipgloss.Style
	connected    lipgloss.Style
	disconnected lipgloss.Style
	status       lipgloss.Style
	statusBusy   lipgloss.Style
	statusErr    lipgloss.Style
	hint         lipgloss.Style
}

// defaultTheme defines the terminal palette used by the IDE host.
func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("55")),
		headerMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color("189")),
		divider: lipgloss.NewStyle().
			Foreground(lipgloss.Color("97")),
		sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("97")).
			Background(lipgloss.Color("234")).
			Padding(0, 1),
		sidebarItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
		sidebarPick: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("141")),
		main: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("97")).
			Background(lipgloss.Color("233")).
			Padding(0, 1),
		mainTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("141")).
			Padding(0, 1),
		walletBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("44")).
			Background(lipgloss.Color("234")).
			Padding(0, 1),
		walletTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("44")).
			Padding(0, 1),
		connected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true),
		disconnected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Bold(true),
		statusBusy: lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true),
		statusErr: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
	}
}
