package report

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	borderColor  = lipgloss.Color("#6B7280") // Gray-500
)

// theme holds the styles of one Printer. The plain theme renders text
// without escape codes.
type theme struct {
	title    lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
	critical lipgloss.Style
	normal   lipgloss.Style
	done     lipgloss.Style
	warning  lipgloss.Style
	errText  lipgloss.Style
	box      lipgloss.Style
}

func newTheme(color bool) theme {
	if !color {
		plain := lipgloss.NewStyle()
		return theme{
			title:    plain,
			header:   plain,
			muted:    plain,
			critical: plain,
			normal:   plain,
			done:     plain,
			warning:  plain,
			errText:  plain,
			box:      plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		}
	}
	return theme{
		title:    lipgloss.NewStyle().Bold(true).Foreground(primaryColor),
		header:   lipgloss.NewStyle().Bold(true).Foreground(mutedColor),
		muted:    lipgloss.NewStyle().Foreground(mutedColor),
		critical: lipgloss.NewStyle().Foreground(errorColor),
		normal:   lipgloss.NewStyle().Foreground(primaryColor),
		done:     lipgloss.NewStyle().Foreground(successColor),
		warning:  lipgloss.NewStyle().Foreground(warningColor),
		errText:  lipgloss.NewStyle().Bold(true).Foreground(errorColor),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1),
	}
}
