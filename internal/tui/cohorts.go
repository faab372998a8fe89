package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"runcohorts/internal/grouping"
	"runcohorts/internal/quantity"
)

// CohortLoader produces one grouping result per metric
type CohortLoader interface {
	AllGroups(ctx context.Context) ([]*grouping.Result, error)
}

// CohortsModel browses cohorts, one tab per metric
type CohortsModel struct {
	loader   CohortLoader
	results  []*grouping.Result
	tab      int
	cursor   int
	viewport viewport.Model
	loading  bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewCohortsModel creates a new cohorts model
func NewCohortsModel(loader CohortLoader, width, height int) CohortsModel {
	m := CohortsModel{
		loader:  loader,
		loading: true,
		width:   width,
		height:  height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init loads every metric's cohorts
func (m CohortsModel) Init() tea.Cmd {
	return m.loadCohorts
}

type cohortsLoadedMsg struct {
	results []*grouping.Result
	err     error
}

func (m CohortsModel) loadCohorts() tea.Msg {
	results, err := m.loader.AllGroups(context.Background())
	return cohortsLoadedMsg{results: results, err: err}
}

// Update handles messages
func (m CohortsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cohortsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.results = msg.results
		m.cursor = min(m.cursor, max(len(m.current())-1, 0))
		m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.refresh()

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "1", "2", "3", "4", "5", "6":
			m.selectTab(int(key[0] - '1'))
			return m, nil
		case "tab", "right", "l":
			m.selectTab((m.tab + 1) % len(grouping.AllMetrics))
			return m, nil
		case "shift+tab", "left", "h":
			m.selectTab((m.tab + len(grouping.AllMetrics) - 1) % len(grouping.AllMetrics))
			return m, nil
		case "j", "down":
			if m.cursor < len(m.current())-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCohorts
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *CohortsModel) selectTab(tab int) {
	if tab < 0 || tab >= len(grouping.AllMetrics) {
		return
	}
	m.tab = tab
	m.cursor = 0
	m.refresh()
	m.viewport.GotoTop()
}

func (m *CohortsModel) refresh() {
	if m.ready && m.results != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

// Metric returns the metric of the active tab
func (m CohortsModel) Metric() grouping.MetricType {
	return grouping.AllMetrics[m.tab]
}

func (m CohortsModel) result() *grouping.Result {
	if m.tab < len(m.results) {
		return m.results[m.tab]
	}
	return nil
}

func (m CohortsModel) current() []grouping.Cohort {
	if res := m.result(); res != nil {
		return res.Cohorts
	}
	return nil
}

// Selected returns the highlighted cohort, if any
func (m CohortsModel) Selected() (grouping.Cohort, bool) {
	cohorts := m.current()
	if m.cursor < len(cohorts) {
		return cohorts[m.cursor], true
	}
	return grouping.Cohort{}, false
}

// View renders the cohorts screen
func (m CohortsModel) View() string {
	tabs := m.renderTabs()

	if m.loading {
		return tabs + "\n  Grouping workouts..."
	}

	if m.err != nil {
		return tabs + errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return tabs + "\n  Initializing..."
	}

	footer := statusStyle.Render("  1-6/tab: metric  j/k: select cohort  pgup/pgdn: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, tabs, m.viewport.View(), footer)
}

func (m CohortsModel) renderTabs() string {
	var tabs []string
	for i, metric := range grouping.AllMetrics {
		def, _ := grouping.Lookup(metric)
		label := fmt.Sprintf("[%d] %s", i+1, def.Title)
		if i == m.tab {
			tabs = append(tabs, navActiveStyle.Render(label))
		} else {
			tabs = append(tabs, navInactiveStyle.Render(label))
		}
	}
	return navStyle.Render(strings.Join(tabs, "  "))
}

func (m CohortsModel) renderContent() string {
	res := m.result()
	if res == nil {
		return ""
	}

	if len(res.Cohorts) == 0 {
		return renderEmptyState(res)
	}

	sections := []string{renderCohortTable(res, m.cursor)}
	if c, ok := m.Selected(); ok {
		sections = append(sections, renderCohortDetail(c))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderEmptyState(res *grouping.Result) string {
	var lines []string
	lines = append(lines, "")
	lines = append(lines, "  No cohorts for this metric yet.")
	lines = append(lines, "")
	if res.Considered == 0 {
		lines = append(lines, statusStyle.Render("  No synced workouts carry this measurement."))
	} else {
		lines = append(lines, statusStyle.Render(fmt.Sprintf(
			"  %d workouts considered, %d outside every bucket's tolerance.", res.Considered, res.Skipped)))
	}
	return strings.Join(lines, "\n")
}

func renderCohortTable(res *grouping.Result, cursor int) string {
	header := tableHeaderStyle.Render(fmt.Sprintf("%-18s  %-22s  %8s  %6s  %11s",
		"Rank", "Cohort", "Workouts", "Share", "Consistency"))

	rows := []string{header}
	for i, c := range res.Cohorts {
		line := fmt.Sprintf("%-18s  %-22s  %8d  %5.1f%%  %11d",
			truncate(c.RankLabel, 18),
			truncate(c.Title, 22),
			c.Count(),
			c.PercentageOfTotal,
			c.Consistency.Score,
		)
		if i == cursor {
			rows = append(rows, tableSelectedStyle.Render(line))
		} else {
			rows = append(rows, tableRowStyle.Render(line))
		}
	}

	if res.Skipped > 0 {
		rows = append(rows, statusStyle.Render(fmt.Sprintf("  %d workouts fell outside tolerance", res.Skipped)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCohortDetail(c grouping.Cohort) string {
	parts := []string{cardTitleStyle.Render(c.Title)}

	parts = append(parts,
		RenderMetric("Highlight", c.Highlight.Start.Format("Jan 02, 2006")+"  "+quantity.Format(c.Highlight.Pace)),
		RenderMetric("Best to Worst", quantity.Format(c.TotalVariation)),
	)
	if c.Prediction != nil {
		parts = append(parts,
			RenderMetric("Prediction", c.Prediction.Summary()),
			RenderMetric("Momentum", RenderMomentum(c.Prediction.Momentum)),
			RenderMetric("Confidence", RenderConfidence(c.Prediction.Confidence, c.Prediction.ConfidenceLevel)),
		)
	}

	if chart := renderSeriesChart(c); chart != "" {
		parts = append(parts, "", chart)
	}

	for _, s := range c.Stats {
		parts = append(parts, "", sectionTitleStyle.Render(s.Title))
		for _, item := range s.Items {
			parts = append(parts, RenderMetric(item.Label, item.Value))
		}
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderSeriesChart plots the cohort's forecast axis over time
func renderSeriesChart(c grouping.Cohort) string {
	axis, values := c.Series()
	if len(values) < 2 {
		return ""
	}

	caption := "pace (s per " + c.Highlight.Distance.Unit + ")"
	if axis == grouping.MetricDuration {
		caption = "time (s)"
	}

	return asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Width(50),
		asciigraph.Precision(0),
		asciigraph.Caption(caption+", oldest first"),
	)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
