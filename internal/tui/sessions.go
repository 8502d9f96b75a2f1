package tui

import (
	"strconv"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart"
	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/mako34/Hagate/internal/service"
)

func newSessionsTable(s Styles) table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 16},
		{Title: "Duration", Width: 9},
		{Title: "Files", Width: 5},
		{Title: "Cycles", Width: 6},
		{Title: "Events", Width: 6},
		{Title: "End", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	t.SetStyles(tableStyles(s))
	return t
}

func tableStyles(s Styles) table.Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(s.Theme.Surface)).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(s.Theme.Accent))
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(s.Theme.Text)).
		Background(lipgloss.Color(s.Theme.Selection)).
		Bold(false)
	ts.Cell = ts.Cell.Foreground(lipgloss.Color(s.Theme.Text))
	return ts
}

func sessionRows(rows []service.SessionRow) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			sessionDuration(r),
			strconv.Itoa(r.FileCount),
			strconv.Itoa(r.Cycles),
			strconv.Itoa(r.Events),
			sessionEnd(r),
		}
	}
	return out
}

func sessionDuration(r service.SessionRow) string {
	if r.EndedAt == nil {
		return "active"
	}
	d := r.EndedAt.Sub(r.StartedAt).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d.String()
}

func sessionEnd(r service.SessionRow) string {
	if r.EndReason == nil {
		return "-"
	}
	return *r.EndReason
}

// renderEventChart draws events per minute as a braille line chart.
func renderEventChart(series []service.MinutePoint, width, height int, s Styles) string {
	if width < 12 || height < 3 {
		return ""
	}
	if len(series) < 2 {
		return s.Subtext.Render("not enough activity for a chart")
	}

	maxY := 0.0
	for _, p := range series {
		if v := float64(p.Count); v > maxY {
			maxY = v
		}
	}
	if maxY == 0 {
		maxY = 1
	}

	chart := tslc.New(width, height)
	chart.SetStyle(s.ChartLine)
	chart.AxisStyle = s.ChartAxis
	chart.LabelStyle = s.ChartLabel
	chart.SetTimeRange(series[0].Minute, series[len(series)-1].Minute)
	chart.SetViewTimeRange(series[0].Minute, series[len(series)-1].Minute)
	chart.SetYRange(0, maxY)
	chart.SetViewYRange(0, maxY)
	chart.Model.XLabelFormatter = minuteLabelFormatter()

	for _, p := range series {
		chart.Push(tslc.TimePoint{Time: p.Minute, Value: float64(p.Count)})
	}
	chart.DrawBraille()
	return chart.View()
}

func minuteLabelFormatter() linechart.LabelFormatter {
	return func(_ int, v float64) string {
		return time.Unix(int64(v), 0).Local().Format("15:04")
	}
}
