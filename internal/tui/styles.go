package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"runcohorts/internal/analysis"
)

// Palette. Gain, hold and loss double as improving, plateauing and declining.
var (
	accentColor = lipgloss.Color("#7C3AED")
	gainColor   = lipgloss.Color("#10B981")
	holdColor   = lipgloss.Color("#F59E0B")
	lossColor   = lipgloss.Color("#EF4444")
	dimColor    = lipgloss.Color("#6B7280")
	inkColor    = lipgloss.Color("#F9FAFB")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true)
}

var (
	headerStyle = bold(inkColor).Background(accentColor).Padding(0, 1).MarginBottom(1)

	navStyle         = fg(dimColor).MarginBottom(1)
	navActiveStyle   = bold(accentColor)
	navInactiveStyle = fg(dimColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(1, 2)
	cardTitleStyle    = bold(accentColor).MarginBottom(1)
	sectionTitleStyle = bold(gainColor)

	metricLabelStyle = fg(dimColor).Width(20)
	metricValueStyle = bold(inkColor)

	tableHeaderStyle = bold(accentColor).
				BorderBottom(true).
				BorderForeground(dimColor).
				Padding(0, 1)
	tableRowStyle      = lipgloss.NewStyle().Padding(0, 1)
	tableSelectedStyle = bold(inkColor).Background(accentColor).Padding(0, 1)

	statusStyle  = fg(dimColor).MarginTop(1)
	errorStyle   = fg(lossColor)
	successStyle = fg(gainColor)
	warningStyle = fg(holdColor)

	helpKeyStyle  = bold(accentColor)
	helpDescStyle = fg(dimColor)

	improvingStyle  = fg(gainColor)
	plateauingStyle = fg(holdColor)
	decliningStyle  = fg(lossColor)
)

// RenderMetric renders a labelled value
func RenderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

// RenderMomentum colors a momentum label by direction
func RenderMomentum(m analysis.Momentum) string {
	switch m {
	case analysis.MomentumImproving:
		return improvingStyle.Render(string(m))
	case analysis.MomentumDeclining:
		return decliningStyle.Render(string(m))
	default:
		return plateauingStyle.Render(string(m))
	}
}

// RenderConfidence shows a forecast confidence score colored by its level
func RenderConfidence(score int, level analysis.ConfidenceLevel) string {
	text := fmt.Sprintf("%d (%s)", score, level)
	switch level {
	case analysis.ConfidenceHigh:
		return improvingStyle.Render(text)
	case analysis.ConfidenceMedium:
		return plateauingStyle.Render(text)
	default:
		return decliningStyle.Render(text)
	}
}
