package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorBorder  = lipgloss.Color("#3F3F46")

	// Event category colors
	ColorCreated  = lipgloss.Color("#73F59F")
	ColorModified = lipgloss.Color("#F5A623")
	ColorDeleted  = lipgloss.Color("#F56565")
	ColorMoved    = lipgloss.Color("#60A5FA")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F1F23")).
			Padding(0, 1)

	WatchTabActive = lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1).
			Bold(true)

	WatchTabInactive = lipgloss.NewStyle().
				Background(lipgloss.Color("#3F3F46")).
				Foreground(lipgloss.Color("#A1A1AA")).
				Padding(0, 1)

	StatsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E4E4E7"))

	// Event feed
	FeedPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	EventTimeStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	EventPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E4E4E7"))

	EventDetailStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	CreatedStyle  = lipgloss.NewStyle().Foreground(ColorCreated)
	ModifiedStyle = lipgloss.NewStyle().Foreground(ColorModified)
	DeletedStyle  = lipgloss.NewStyle().Foreground(ColorDeleted)
	MovedStyle    = lipgloss.NewStyle().Foreground(ColorMoved)

	PausedBadge = lipgloss.NewStyle().
			Background(ColorModified).
			Foreground(lipgloss.Color("#000000")).
			Padding(0, 1).
			Bold(true)

	// Help bar
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
)

// FormatSize formats bytes to human readable string
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1fTB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1fGB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
