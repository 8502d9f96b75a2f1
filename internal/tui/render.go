package tui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mako34/Hagate/internal/logging"
)

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(a.renderTabs())
	b.WriteString("\n")
	b.WriteString(a.renderBody())
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(a.renderFooter())
	return b.String()
}

// bodyHeight is what remains after the tab bar, status bar and footer.
func (a *App) bodyHeight() int {
	return max(a.height-3, 1)
}

func (a *App) renderTabs() string {
	names := []string{"1:Editor", "2:Activity", "3:Sessions"}
	parts := make([]string, len(names))
	for i, n := range names {
		if Tab(i) == a.tab && !a.paletteOpen {
			parts[i] = a.styles.TabActive.Render(n)
		} else {
			parts[i] = a.styles.TabInactive.Render(n)
		}
	}
	left := strings.Join(parts, " ")
	right := a.styles.Title.Render("hagate")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left, a.width, "")
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) renderBody() string {
	h := a.bodyHeight()
	var body string
	switch {
	case a.paletteOpen:
		body = a.renderPalette(h)
	case a.tab == TabEditor:
		body = a.renderEditor(h)
	case a.tab == TabActivity:
		body = a.renderActivity(h)
	case a.tab == TabSessions:
		body = a.renderSessions(h)
	}
	return fitHeight(body, h)
}

func (a *App) renderEditor(h int) string {
	snap := a.editor
	var b strings.Builder
	b.WriteString(a.renderDocTabs())
	b.WriteString("\n")
	if len(snap.Tabs) == 0 {
		b.WriteString(a.styles.Subtext.Render("no open documents, press s to start the performance"))
		return b.String()
	}
	b.WriteString(a.renderDocument(snap, h-1))
	return b.String()
}

func (a *App) renderDocTabs() string {
	snap := a.editor
	if len(snap.Tabs) == 0 {
		return a.styles.DocTab.Render(" ~ ")
	}
	parts := make([]string, 0, len(snap.Tabs))
	for i, t := range snap.Tabs {
		name := t.Name
		if !t.Scratch {
			name = filepath.Base(name)
		}
		if i == len(snap.Tabs)-1 {
			parts = append(parts, a.styles.DocTabActive.Render(" "+name+" "))
		} else {
			parts = append(parts, a.styles.DocTab.Render(" "+name+" "))
		}
	}
	// keep the focused tab visible when the strip overflows
	for len(parts) > 1 && lipgloss.Width(strings.Join(parts, "")) > a.width {
		parts = parts[1:]
	}
	return ansi.Truncate(strings.Join(parts, ""), a.width, "")
}

// renderDocument shows a window of the focused document centered on the
// revealed line, with the selection or cursor line highlighted.
func (a *App) renderDocument(snap EditorSnapshot, h int) string {
	total := len(snap.Lines)
	if total == 0 {
		return a.styles.Subtext.Render("(empty)")
	}
	if h < 1 {
		h = 1
	}

	reveal := clampInt(snap.Reveal, 0, total-1)
	top := clampInt(reveal-h/2, 0, max(total-h, 0))
	gutter := len(strconv.Itoa(total))
	bodyWidth := max(a.width-gutter-1, 1)

	var b strings.Builder
	for i := top; i < total && i < top+h; i++ {
		if i > top {
			b.WriteString("\n")
		}
		b.WriteString(a.styles.LineNumber.Render(fmt.Sprintf("%*d ", gutter, i+1)))

		line := ansi.Truncate(expandTabs(snap.Lines[i]), bodyWidth, "")
		switch {
		case snap.Selected && i >= snap.Selection.Start && i <= snap.Selection.End:
			b.WriteString(a.styles.Selection.Render(padRight(line, bodyWidth)))
		case !snap.Selected && i == snap.Cursor:
			b.WriteString(a.styles.CursorLine.Render(padRight(line, bodyWidth)))
		default:
			b.WriteString(a.styles.Text.Render(line))
		}
	}
	return b.String()
}

func (a *App) renderActivity(h int) string {
	entries := a.feedEntries
	if a.feed != nil && len(entries) == 0 {
		entries = a.feed.Recent(activityFeedLines)
	}
	if len(entries) == 0 {
		return a.styles.Subtext.Render("no activity yet")
	}
	if len(entries) > h {
		entries = entries[len(entries)-h:]
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.renderFeedLine(e))
	}
	return b.String()
}

func (a *App) renderFeedLine(e logging.Entry) string {
	var lvlStyle lipgloss.Style
	switch {
	case e.Level >= slog.LevelError:
		lvlStyle = a.styles.Text.Foreground(lipgloss.Color(a.styles.Theme.Error))
	case e.Level >= slog.LevelWarn:
		lvlStyle = a.styles.Text.Foreground(lipgloss.Color(a.styles.Theme.Warning))
	case e.Level >= slog.LevelInfo:
		lvlStyle = a.styles.Text.Foreground(lipgloss.Color(a.styles.Theme.Accent))
	default:
		lvlStyle = a.styles.Subtext
	}

	line := a.styles.Subtext.Render(e.Time.Local().Format("15:04:05")) +
		" " + lvlStyle.Render(fmt.Sprintf("%-5s", e.Level.String())) +
		" " + a.styles.Text.Render(e.Message)
	if e.Attrs != "" {
		line += "  " + a.styles.Subtext.Render(e.Attrs)
	}
	return ansi.Truncate(line, a.width, "")
}

func (a *App) renderSessions(h int) string {
	var b strings.Builder
	b.WriteString(a.sessionsTable.View())
	b.WriteString("\n")
	used := lipgloss.Height(a.sessionsTable.View()) + 1
	b.WriteString(a.renderOverview(max(h-used, 1)))
	return b.String()
}

func (a *App) renderOverview(h int) string {
	ov := a.overview
	if ov == nil {
		return a.styles.Subtext.Render("no session selected")
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("session " + shortID(ov.ID)))
	b.WriteString(a.styles.Subtext.Render(fmt.Sprintf("  %d events", ov.Events)))
	b.WriteString("\n")

	if len(ov.Steps) > 0 {
		parts := make([]string, len(ov.Steps))
		for i, s := range ov.Steps {
			parts[i] = fmt.Sprintf("%s:%d", s.Step, s.Count)
		}
		b.WriteString(a.styles.Text.Render(strings.Join(parts, "  ")))
		b.WriteString("\n")
	}

	if h > 4 {
		b.WriteString(renderEventChart(ov.Series, max(a.width-2, 12), h-3, a.styles))
	}
	return b.String()
}

func (a *App) renderPalette(h int) string {
	var b strings.Builder
	b.WriteString(a.palette.View())

	shown := a.matches
	if len(shown) > max(h-2, 0) {
		shown = shown[:max(h-2, 0)]
	}
	for _, c := range shown {
		b.WriteString("\n  ")
		b.WriteString(a.styles.PaletteMatch.Render(padRight(c.Name, 10)))
		b.WriteString(" ")
		b.WriteString(a.styles.PaletteDesc.Render(c.Desc))
	}
	if len(a.matches) == 0 {
		b.WriteString("\n  ")
		b.WriteString(a.styles.Subtext.Render("no matching commands"))
	}
	return b.String()
}

func (a *App) renderStatusBar() string {
	var left string
	if a.running {
		left = a.styles.StatusOn.Render("● running")
		left += a.styles.StatusText.Render(fmt.Sprintf(" cycle %d", a.cycle+1))
		if a.lastStep != "" {
			left += a.styles.StatusText.Render(" " + a.lastStep + " " + filepath.Base(a.lastFile))
		}
	} else {
		left = a.styles.StatusOff.Render("○ stopped")
	}

	if a.notice != "" {
		style := a.styles.StatusText
		switch a.noticeLevel {
		case noticeWarn:
			style = a.styles.StatusWarn
		case noticeError:
			style = a.styles.StatusErr
		}
		left += a.styles.StatusText.Render("  ") + style.Render(a.notice)
	}

	rightText := fmt.Sprintf("%d files  %s", a.fileCount, a.cfg.Workspace.Root)
	if a.editor.ClipboardLines > 0 {
		rightText = fmt.Sprintf("clip %dL  %s", a.editor.ClipboardLines, rightText)
	}
	right := a.styles.StatusText.Render(rightText)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left, a.width, "")
	}
	return left + a.styles.StatusText.Render(strings.Repeat(" ", gap)) + right
}

func (a *App) renderFooter() string {
	space := a.styles.FooterDesc.Render(" ")
	sep := a.styles.FooterDesc.Render("  ")
	parts := make([]string, 0, 8)
	for _, kb := range a.keys.footerBindings() {
		help := kb.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, a.styles.FooterKey.Render(help.Key)+space+a.styles.FooterDesc.Render(help.Desc))
	}
	return ansi.Truncate(strings.Join(parts, sep), a.width, "")
}

// fitHeight pads or trims s to exactly h lines so the bars below stay put.
func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, w int) string {
	if d := w - ansi.StringWidth(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
