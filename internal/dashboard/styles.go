package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("6")
	muted  = lipgloss.Color("8")

	titleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	errorPanelStyle = panelStyle.
			BorderForeground(lipgloss.Color("1"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(accent).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(muted)

	healthyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)
