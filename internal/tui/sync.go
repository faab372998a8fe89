package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runcohorts/internal/service"
)

// Syncer pulls new workouts from the provider
type Syncer interface {
	SyncWorkouts(ctx context.Context, progress chan<- service.SyncProgress) (*service.SyncResult, error)
}

// RateLimits reports remaining API requests
type RateLimits interface {
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// SyncModel is the sync screen model
type SyncModel struct {
	syncer  Syncer
	limits  RateLimits
	syncing bool
	result  *service.SyncResult
	err     error
	done    bool
}

// NewSyncModel creates a new sync model. A nil syncer means there is no
// Strava login yet.
func NewSyncModel(syncer Syncer, limits RateLimits) SyncModel {
	return SyncModel{
		syncer: syncer,
		limits: limits,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing && m.syncer != nil {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				m.result = nil
				return m, m.runSync
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync() tea.Msg {
	// No progress channel: nothing would drain it while the command runs
	result, err := m.syncer.SyncWorkouts(context.Background(), nil)
	return SyncDoneMsg{Result: result, Err: err}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Strava Sync")
	sections = append(sections, title)

	if m.syncer == nil {
		sections = append(sections, warningStyle.Render("\n  Not connected to Strava."))
		sections = append(sections, "\n"+statusStyle.Render("  Run 'runcohorts login', then reopen the browser."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 'c' to browse cohorts"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, "\n  Fetching new workouts from Strava...")
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  Fetch runs, walks and hikes added since the last sync.")
	lines = append(lines, "")

	if m.limits != nil {
		short, daily := m.limits.RateLimitStatus()
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  API requests left: %d (15min), %d (daily)", short, daily)))
		lines = append(lines, "")
	}
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	if m.result == nil {
		return ""
	}

	r := m.result
	lines := []string{""}

	if r.WorkoutsStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d workouts synced", r.WorkoutsStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new workouts"))
	}

	if r.Skipped > 0 {
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  %d other activities ignored", r.Skipped)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
