package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header displays watch tabs and aggregate stats
type Header struct {
	watches     []string
	selected    int // 0 = all watches, 1..n = single watch
	width       int
	paused      bool
	totalEvents int64
}

// NewHeader creates a new header component
func NewHeader(watches []string) Header {
	return Header{
		watches: watches,
	}
}

// SetSelected sets the selected tab (0 = all)
func (h *Header) SetSelected(idx int) {
	if idx >= 0 && idx <= len(h.watches) {
		h.selected = idx
	}
}

// Selected returns the selected tab index (0 = all)
func (h Header) Selected() int {
	return h.selected
}

// SetPaused sets the paused indicator
func (h *Header) SetPaused(paused bool) {
	h.paused = paused
}

// SetTotalEvents sets the delivered-event counter
func (h *Header) SetTotalEvents(n int64) {
	h.totalEvents = n
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
func (h Header) View() string {
	appName := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C084FC")). // soft violet
		Bold(true).
		Render("DRIFTWATCH")

	// Watch tabs: ALL plus one tab per watched root
	labels := make([]string, 0, len(h.watches)+1)
	labels = append(labels, "ALL")
	for _, path := range h.watches {
		labels = append(labels, filepath.Base(path))
	}

	var tabs []string
	for i, label := range labels {
		if i == h.selected {
			tabs = append(tabs, WatchTabActive.Render(label))
		} else {
			tabs = append(tabs, WatchTabInactive.Render(label))
		}
	}
	watchTabs := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var badge string
	if h.paused {
		badge = PausedBadge.Render("PAUSED")
	}

	// Stats on the right: event count plus free space of the
	// selected watch's volume
	stats := StatsStyle.Render(fmt.Sprintf("%d events", h.totalEvents))
	if h.selected > 0 && h.selected <= len(h.watches) {
		if free := freeSpace(h.watches[h.selected-1]); free > 0 {
			stats += StatsStyle.Render(fmt.Sprintf("  %s free", FormatSize(free)))
		}
	}

	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" │ ")

	used := lipgloss.Width(appName) + lipgloss.Width(sep) + lipgloss.Width(watchTabs) +
		lipgloss.Width(badge) + lipgloss.Width(stats)
	gap := h.width - used - 2
	if gap < 2 {
		gap = 2
	}
	leftGap := gap / 2
	rightGap := gap - leftGap

	line := appName + sep + watchTabs +
		strings.Repeat(" ", leftGap) + badge +
		strings.Repeat(" ", rightGap) + stats

	return HeaderStyle.MaxHeight(1).Render(line)
}
