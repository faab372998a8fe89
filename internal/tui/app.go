// Package tui is the Bubble Tea cohort browser.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runcohorts/internal/grouping"
)

// Screen identifies what the app is showing
type Screen int

const (
	ScreenCohorts Screen = iota
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	cohorts    CohortsModel
	syncScreen SyncModel
	help       HelpModel

	loader CohortLoader

	width, height int

	// status is shown under the visible screen until the next load
	status string
}

// NewApp creates a new App. syncer and limits may be nil when there is no
// Strava login.
func NewApp(loader CohortLoader, syncer Syncer, limits RateLimits) *App {
	return &App{
		screen:     ScreenCohorts,
		loader:     loader,
		cohorts:    NewCohortsModel(loader, 0, 0),
		syncScreen: NewSyncModel(syncer, limits),
		help:       NewHelpModel(),
	}
}

// Init loads every metric's cohorts
func (a *App) Init() tea.Cmd {
	return a.cohorts.Init()
}

// Update routes global keys and app-level messages, then forwards the rest
// to the visible screen
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless a sync is running)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "c":
				a.screen = ScreenCohorts
				return a, nil
			case "1", "2", "3", "4", "5", "6", "tab", "shift+tab":
				// Metric tabs always land on the cohort browser
				a.screen = ScreenCohorts
			case "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "?":
				if a.screen != ScreenHelp {
					a.prevScreen = a.screen
				}
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The cohort browser keeps its viewport sized even when hidden
		return a, a.updateCohorts(msg)

	case cohortsLoadedMsg:
		a.status = ""
		return a, a.updateCohorts(msg)

	case SyncCompleteMsg:
		// Regroup with the new workouts
		a.status = "Workouts synced, regrouping..."
		a.cohorts = NewCohortsModel(a.loader, a.width, a.height)
		return a, a.cohorts.Init()
	}

	return a, a.forward(msg)
}

func (a *App) updateCohorts(msg tea.Msg) tea.Cmd {
	m, cmd := a.cohorts.Update(msg)
	a.cohorts = m.(CohortsModel)
	return cmd
}

// forward hands msg to the visible screen
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var (
		m   tea.Model
		cmd tea.Cmd
	)
	switch a.screen {
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	default:
		cmd = a.updateCohorts(msg)
	}
	return cmd
}

// screens lists the navigation entries in display order
var screens = []struct {
	screen Screen
	key    string
	label  string
}{
	{ScreenCohorts, "c", "Cohorts"},
	{ScreenSync, "s", "Sync"},
	{ScreenHelp, "?", "Help"},
}

// View renders the header, navigation, the visible screen and any status line
func (a *App) View() string {
	var body string
	switch a.screen {
	case ScreenSync:
		body = a.syncScreen.View()
	case ScreenHelp:
		body = a.help.View()
	default:
		body = a.cohorts.View()
	}

	rows := []string{a.renderHeader(), a.renderNav(), body}
	if a.status != "" {
		rows = append(rows, statusStyle.Render(a.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderHeader names the app and the metric the browser is grouped by
func (a *App) renderHeader() string {
	title := "Workout Cohorts"
	if def, err := grouping.Lookup(a.cohorts.Metric()); err == nil {
		title += " by " + strings.ToLower(def.Title)
	}
	return headerStyle.Render(title)
}

func (a *App) renderNav() string {
	entries := make([]string, 0, len(screens)+1)
	for _, s := range screens {
		style := navInactiveStyle
		if s.screen == a.screen {
			style = navActiveStyle
		}
		entries = append(entries, style.Render(fmt.Sprintf("[%s] %s", s.key, s.label)))
	}
	entries = append(entries, navInactiveStyle.Render("[q] Quit"))
	return navStyle.Render(strings.Join(entries, "  "))
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
