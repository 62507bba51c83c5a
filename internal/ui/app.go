package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lumipallolabs/driftwatch/internal/watch"
)

// maxFeedRows bounds the in-memory event feed
const maxFeedRows = 500

// kindColumnWidth fits the longest category label ("file modified")
const kindColumnWidth = 14

// EventMsg delivers one watch event into the UI. The observer side
// sends these through tea.Program.Send.
type EventMsg struct {
	Watch string
	Event watch.Event
	Time  time.Time
}

// WatchErrorMsg reports a failed poll for one watch
type WatchErrorMsg struct {
	Watch string
	Err   error
}

// feedRow is one rendered line of the event feed
type feedRow struct {
	time   time.Time
	watch  string
	kind   string
	text   string
	detail string
	isErr  bool
}

// App is the main application model
type App struct {
	header Header
	help   HelpOverlay
	keys   KeyMap

	watches  []string
	classify bool

	rows        []feedRow
	totalEvents int64
	scroll      int // lines up from the newest row; 0 = pinned
	paused      bool

	width  int
	height int
}

// NewApp creates a new application instance. watches are the
// canonical roots being observed; classify enables content-type
// annotation of created files.
func NewApp(watches []string, classify bool) App {
	return App{
		header:   NewHeader(watches),
		help:     NewHelpOverlay(),
		keys:     DefaultKeyMap(),
		watches:  watches,
		classify: classify,
	}
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.header.SetWidth(msg.Width)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case EventMsg:
		a.totalEvents++
		a.header.SetTotalEvents(a.totalEvents)
		if !a.paused {
			a.appendRow(a.eventRow(msg))
		}
		return a, nil

	case WatchErrorMsg:
		if !a.paused {
			a.appendRow(feedRow{
				time:  time.Now(),
				watch: msg.Watch,
				kind:  "watch error",
				text:  msg.Err.Error(),
				isErr: true,
			})
		}
		return a, nil
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.help.IsVisible() {
		// Any key closes the overlay, quit still works
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		a.help.SetVisible(false)
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
	case key.Matches(msg, a.keys.Pause):
		a.paused = !a.paused
		a.header.SetPaused(a.paused)
	case key.Matches(msg, a.keys.Clear):
		a.rows = nil
		a.scroll = 0
	case key.Matches(msg, a.keys.Up):
		if a.scroll < len(a.visibleRows())-1 {
			a.scroll++
		}
	case key.Matches(msg, a.keys.Down):
		if a.scroll > 0 {
			a.scroll--
		}
	case key.Matches(msg, a.keys.Top):
		if n := len(a.visibleRows()); n > 0 {
			a.scroll = n - 1
		}
	case key.Matches(msg, a.keys.Bottom):
		a.scroll = 0
	case key.Matches(msg, a.keys.AllTab):
		a.header.SetSelected(0)
		a.scroll = 0
	default:
		a.handleWatchKey(msg)
	}
	return a, nil
}

func (a *App) handleWatchKey(msg tea.KeyMsg) {
	tabs := []key.Binding{
		a.keys.Watch1, a.keys.Watch2, a.keys.Watch3,
		a.keys.Watch4, a.keys.Watch5, a.keys.Watch6,
		a.keys.Watch7, a.keys.Watch8, a.keys.Watch9,
	}
	for i, binding := range tabs {
		if key.Matches(msg, binding) && i < len(a.watches) {
			a.header.SetSelected(i + 1)
			a.scroll = 0
			return
		}
	}
}

// eventRow converts an event into a display row
func (a App) eventRow(msg EventMsg) feedRow {
	row := feedRow{
		time:  msg.Time,
		watch: msg.Watch,
		kind:  watch.Kind(msg.Event),
	}

	switch ev := msg.Event.(type) {
	case watch.FileMoved:
		row.text = ev.OldPath + " -> " + ev.Path
	case watch.DirMoved:
		row.text = ev.OldPath + " -> " + ev.Path
	case watch.FileCreated:
		row.text = ev.Path
		if a.classify {
			// Best effort; the file may already be gone by now
			if mtype, err := mimetype.DetectFile(ev.Path); err == nil {
				row.detail = mtype.String()
			}
		}
	default:
		row.text = watch.EventPath(msg.Event)
	}
	return row
}

func (a *App) appendRow(row feedRow) {
	a.rows = append(a.rows, row)
	if len(a.rows) > maxFeedRows {
		a.rows = a.rows[len(a.rows)-maxFeedRows:]
	}
	// A reader scrolled back in history stays where they are
	if a.scroll > 0 {
		a.scroll++
	}
}

// visibleRows applies the watch-tab filter
func (a App) visibleRows() []feedRow {
	selected := a.header.Selected()
	if selected == 0 || selected > len(a.watches) {
		return a.rows
	}
	watchPath := a.watches[selected-1]
	filtered := make([]feedRow, 0, len(a.rows))
	for _, row := range a.rows {
		if row.watch == watchPath {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 {
		return "starting..."
	}

	if a.help.IsVisible() {
		return a.help.View()
	}

	header := a.header.View()
	helpBar := HelpBar(a.width)

	// Header and help bar take one line each, the feed border two
	feedHeight := a.height - 4
	if feedHeight < 1 {
		feedHeight = 1
	}

	feed := a.renderFeed(feedHeight)

	return lipgloss.JoinVertical(lipgloss.Left, header, feed, helpBar)
}

func (a App) renderFeed(height int) string {
	rows := a.visibleRows()

	end := len(rows) - a.scroll
	if end < 0 {
		end = 0
	}
	start := end - height
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, height)
	for _, row := range rows[start:end] {
		lines = append(lines, a.renderRow(row))
	}
	if len(lines) == 0 {
		lines = append(lines, EventDetailStyle.Render("waiting for changes..."))
	}

	body := strings.Join(lines, "\n")
	return FeedPanelStyle.Width(a.width - 2).Height(height).Render(body)
}

func (a App) renderRow(row feedRow) string {
	timestamp := EventTimeStyle.Render(row.time.Format("15:04:05"))
	kind := kindStyle(row.kind, row.isErr).
		Width(kindColumnWidth).
		Render(row.kind)

	line := fmt.Sprintf("%s %s %s", timestamp, kind, EventPathStyle.Render(row.text))
	if row.detail != "" {
		line += EventDetailStyle.Render(" (" + row.detail + ")")
	}
	return line
}

func kindStyle(kind string, isErr bool) lipgloss.Style {
	if isErr {
		return DeletedStyle
	}
	switch {
	case strings.HasSuffix(kind, "created"):
		return CreatedStyle
	case strings.HasSuffix(kind, "modified"):
		return ModifiedStyle
	case strings.HasSuffix(kind, "deleted"):
		return DeletedStyle
	case strings.HasSuffix(kind, "moved"):
		return MovedStyle
	default:
		return EventPathStyle
	}
}
