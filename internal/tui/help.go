package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		renderKeySection("Navigation", []keyHelp{
			{"c", "Cohort browser"},
			{"s", "Sync screen"},
			{"?", "Help (this screen)"},
			{"esc", "Back / close help"},
			{"q", "Quit"},
		}),
		renderKeySection("Cohorts", []keyHelp{
			{"1-6", "Distance, pace, duration, elevation, temperature, humidity"},
			{"tab / shift+tab", "Next / previous metric"},
			{"j / down", "Select next cohort"},
			{"k / up", "Select previous cohort"},
			{"pgdn / pgup", "Scroll details"},
			{"r", "Regroup from the database"},
		}),
		renderKeySection("Sync Screen", []keyHelp{
			{"s / enter", "Start sync"},
		}),
		renderTermsHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func renderKeySection(title string, keys []keyHelp) string {
	lines := []string{"", sectionTitleStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func renderTermsHelp() string {
	lines := []string{"", sectionTitleStyle.Render("Terms"), ""}

	terms := []struct {
		name string
		desc string
	}{
		{"Cohort", "Workouts whose value sits within tolerance of the same bucket center."},
		{"Consistency", "0-100. How tightly the cohort's results cluster; 100 is identical."},
		{"Best to Worst", "Gap between the best and worst workout in the cohort."},
		{"Momentum", "Improving, declining or plateauing, from the cohort's trend line."},
		{"Confidence", "0-100. Grows with more workouts, a longer span and a clearer trend."},
	}

	for _, t := range terms {
		lines = append(lines, "  "+helpKeyStyle.Render(t.name))
		lines = append(lines, "  "+helpDescStyle.Render(t.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
