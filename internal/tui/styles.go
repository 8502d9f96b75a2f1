package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mako34/Hagate/internal/theme"
)

// Styles is the full style set the views render with, derived from a single
// theme so switching themes swaps everything at once.
type Styles struct {
	Theme theme.Theme

	Title       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	DocTab       lipgloss.Style
	DocTabActive lipgloss.Style

	Text       lipgloss.Style
	Subtext    lipgloss.Style
	LineNumber lipgloss.Style
	Selection  lipgloss.Style
	CursorLine lipgloss.Style

	StatusText lipgloss.Style
	StatusOn   lipgloss.Style
	StatusOff  lipgloss.Style
	StatusWarn lipgloss.Style
	StatusErr  lipgloss.Style

	FooterKey  lipgloss.Style
	FooterDesc lipgloss.Style

	PalettePrompt lipgloss.Style
	PaletteMatch  lipgloss.Style
	PaletteDesc   lipgloss.Style

	ChartLine  lipgloss.Style
	ChartAxis  lipgloss.Style
	ChartLabel lipgloss.Style
}

// NewStyles derives the style set from th.
func NewStyles(th theme.Theme) Styles {
	bar := lipgloss.Color(th.StatusBar)
	return Styles{
		Theme: th,

		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Accent)),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Background)).Background(lipgloss.Color(th.Accent)).Padding(0, 1),
		TabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Subtext)).Background(lipgloss.Color(th.Surface)).Padding(0, 1),

		DocTab:       lipgloss.NewStyle().Foreground(lipgloss.Color(th.Subtext)),
		DocTabActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Text)).Background(lipgloss.Color(th.Surface)),

		Text:       lipgloss.NewStyle().Foreground(lipgloss.Color(th.Text)),
		Subtext:    lipgloss.NewStyle().Foreground(lipgloss.Color(th.Subtext)),
		LineNumber: lipgloss.NewStyle().Foreground(lipgloss.Color(th.LineNumber)),
		Selection:  lipgloss.NewStyle().Foreground(lipgloss.Color(th.Text)).Background(lipgloss.Color(th.Selection)),
		CursorLine: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Text)).Background(lipgloss.Color(th.Surface)),

		StatusText: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Text)).Background(bar),
		StatusOn:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Success)).Background(bar),
		StatusOff:  lipgloss.NewStyle().Foreground(lipgloss.Color(th.Subtext)).Background(bar),
		StatusWarn: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Warning)).Background(bar),
		StatusErr:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Error)).Background(bar),

		FooterKey:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Accent)),
		FooterDesc: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Subtext)),

		PalettePrompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Accent)),
		PaletteMatch:  lipgloss.NewStyle().Foreground(lipgloss.Color(th.Text)),
		PaletteDesc:   lipgloss.NewStyle().Foreground(lipgloss.Color(th.Subtext)),

		ChartLine:  lipgloss.NewStyle().Foreground(lipgloss.Color(th.Accent)),
		ChartAxis:  lipgloss.NewStyle().Foreground(lipgloss.Color(th.Surface)),
		ChartLabel: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Subtext)),
	}
}
