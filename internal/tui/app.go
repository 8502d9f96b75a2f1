// Package tui is the terminal front end: a fake editor pane the activity
// engine performs in, an activity log tab and a session history tab.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mako34/Hagate/internal/config"
	"github.com/mako34/Hagate/internal/engine"
	"github.com/mako34/Hagate/internal/logging"
	"github.com/mako34/Hagate/internal/service"
	"github.com/mako34/Hagate/internal/theme"
)

// Tab identifies the visible top-level pane.
type Tab int

const (
	TabEditor Tab = iota
	TabActivity
	TabSessions
)

const (
	tabCount          = 3
	queryTimeout      = 5 * time.Second
	refreshEvery      = time.Second
	noticeFor         = 4 * time.Second
	activityFeedLines = 100
	sessionListLimit  = 50
)

// App is the bubbletea model for the whole interface.
type App struct {
	ctx      context.Context
	cfg      config.Config
	log      *slog.Logger
	engine   *engine.Controller
	stats    *service.Stats
	maint    *service.MaintenanceService
	feed     *logging.Feed
	bridge   *Bridge
	themes   []theme.Theme
	registry *CommandRegistry
	keys     keyMap
	styles   Styles

	width  int
	height int
	tab    Tab

	editor    EditorSnapshot
	running   bool
	sessionID string
	fileCount int
	cycle     int
	lastStep  string
	lastFile  string

	notice      string
	noticeLevel noticeLevel
	noticeAt    time.Time

	paletteOpen bool
	palette     textinput.Model
	matches     []Command

	sessionsTable table.Model
	sessions      []service.SessionRow
	overview      *service.SessionOverview

	feedEntries []logging.Entry
}

// NewApp wires the model together. The bridge must be the same one the
// engine drives.
func NewApp(
	ctx context.Context,
	cfg config.Config,
	eng *engine.Controller,
	stats *service.Stats,
	maint *service.MaintenanceService,
	feed *logging.Feed,
	bridge *Bridge,
	themes []theme.Theme,
	log *slog.Logger,
) *App {
	th := theme.Default()
	if found := theme.Find(themes, cfg.UI.Theme); found != nil {
		th = *found
	}
	styles := NewStyles(th)

	input := textinput.New()
	input.Placeholder = "type a command"
	input.Prompt = ": "
	input.CharLimit = 120

	a := &App{
		ctx:           ctx,
		cfg:           cfg,
		log:           log,
		engine:        eng,
		stats:         stats,
		maint:         maint,
		feed:          feed,
		bridge:        bridge,
		themes:        themes,
		registry:      newRegistry(appCommands()),
		keys:          defaultKeyMap(),
		styles:        styles,
		palette:       input,
		sessionsTable: newSessionsTable(styles),
	}
	if bridge != nil {
		a.editor = bridge.Snapshot()
	}
	a.restyle()
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadSessionsCmd(), a.tickCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layoutTable()
		return a, nil

	case tea.KeyMsg:
		if a.paletteOpen {
			return a.updatePalette(msg)
		}
		return a.updateKeys(msg)

	case editorSnapshotMsg:
		a.editor = msg.snapshot
		return a, nil

	case noticeMsg:
		a.setNotice(msg.level, msg.text)
		return a, nil

	case runStartedMsg:
		a.running = true
		a.sessionID = msg.session
		a.fileCount = msg.files
		a.cycle = 0
		a.lastStep = ""
		a.lastFile = ""
		a.setNotice(noticeInfo, fmt.Sprintf("performing across %d files", msg.files))
		return a, nil

	case stepDoneMsg:
		a.cycle = msg.event.Cycle
		a.lastStep = string(msg.event.Step)
		a.lastFile = msg.event.File
		return a, nil

	case runEndedMsg:
		a.running = false
		a.setNotice(noticeInfo, fmt.Sprintf("run ended (%s) after %d cycles", msg.reason, msg.cycles))
		return a, a.loadSessionsCmd()

	case sessionsLoadedMsg:
		a.sessions = msg.rows
		a.sessionsTable.SetRows(sessionRows(msg.rows))
		if a.sessionsTable.Cursor() >= len(msg.rows) {
			a.sessionsTable.GotoTop()
		}
		return a, a.loadOverviewCmd()

	case overviewLoadedMsg:
		a.overview = msg.overview
		return a, nil

	case historyClearedMsg:
		a.sessions = nil
		a.overview = nil
		a.sessionsTable.SetRows(nil)
		a.setNotice(noticeInfo, "history cleared")
		return a, a.loadSessionsCmd()

	case errMsg:
		a.log.Error("background task failed", "err", msg.err)
		a.setNotice(noticeError, msg.err.Error())
		return a, nil

	case tickMsg:
		if a.feed != nil {
			a.feedEntries = a.feed.Recent(activityFeedLines)
		}
		if a.notice != "" && time.Since(a.noticeAt) > noticeFor {
			a.notice = ""
		}
		return a, a.tickCmd()
	}
	return a, nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.engine.Shutdown()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Start):
		return a, a.startRunCmd()

	case key.Matches(msg, a.keys.Stop):
		a.engine.Stop()
		return a, nil

	case key.Matches(msg, a.keys.NextTab):
		a.tab = (a.tab + 1) % tabCount
		if a.tab == TabSessions {
			return a, a.loadSessionsCmd()
		}
		return a, nil

	case key.Matches(msg, a.keys.Editor):
		a.tab = TabEditor
		return a, nil

	case key.Matches(msg, a.keys.Activity):
		a.tab = TabActivity
		return a, nil

	case key.Matches(msg, a.keys.Sessions):
		a.tab = TabSessions
		return a, a.loadSessionsCmd()

	case key.Matches(msg, a.keys.Palette):
		a.openPalette()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadSessionsCmd()

	case key.Matches(msg, a.keys.Up), key.Matches(msg, a.keys.Down):
		if a.tab == TabSessions {
			var cmd tea.Cmd
			a.sessionsTable, cmd = a.sessionsTable.Update(msg)
			return a, tea.Batch(cmd, a.loadOverviewCmd())
		}
		return a, nil
	}
	return a, nil
}

func (a *App) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closePalette()
		return a, nil
	case "enter":
		value := strings.TrimSpace(a.palette.Value())
		a.closePalette()
		return a.execute(value)
	}
	var cmd tea.Cmd
	a.palette, cmd = a.palette.Update(msg)
	a.matches = a.registry.Search(commandName(a.palette.Value()))
	return a, cmd
}

// execute runs a palette input of the form "name [args...]". A unique fuzzy
// match counts; anything else reports the closest known name.
func (a *App) execute(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		return a, nil
	}
	fields := strings.Fields(value)
	name, args := fields[0], fields[1:]

	cmd, ok := a.registry.Find(name)
	if !ok {
		if hits := a.registry.Search(name); len(hits) == 1 {
			cmd, ok = hits[0], true
		}
	}
	if !ok {
		text := fmt.Sprintf("unknown command %q", name)
		if near, found := a.registry.Closest(name); found {
			text += fmt.Sprintf(", did you mean %q?", near)
		}
		a.setNotice(noticeWarn, text)
		return a, nil
	}
	return a, cmd.Run(a, args)
}

func (a *App) openPalette() {
	a.paletteOpen = true
	a.palette.Reset()
	a.palette.Focus()
	a.matches = a.registry.Search("")
}

func (a *App) closePalette() {
	a.paletteOpen = false
	a.palette.Blur()
}

func (a *App) setNotice(level noticeLevel, text string) {
	a.notice = text
	a.noticeLevel = level
	a.noticeAt = time.Now()
}

// restyle re-applies the current style set to the stateful widgets, used on
// construction and after a theme switch.
func (a *App) restyle() {
	a.palette.PromptStyle = a.styles.PalettePrompt
	a.palette.TextStyle = a.styles.Text
	a.palette.PlaceholderStyle = a.styles.Subtext
	a.sessionsTable.SetStyles(tableStyles(a.styles))
}

func (a *App) layoutTable() {
	a.sessionsTable.SetWidth(a.width)
	a.sessionsTable.SetHeight(max(4, a.bodyHeight()/2-1))
}

// startRunCmd launches the engine off the update loop; the workspace scan
// can touch a lot of disk.
func (a *App) startRunCmd() tea.Cmd {
	return func() tea.Msg {
		a.engine.Start(a.ctx)
		return nil
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) loadSessionsCmd() tea.Cmd {
	if a.stats == nil {
		return nil
	}
	stats := a.stats
	ctx := a.ctx
	return func() tea.Msg {
		c, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()
		rows, err := stats.Recent(c, sessionListLimit)
		if err != nil {
			return errMsg{err: err}
		}
		return sessionsLoadedMsg{rows: rows}
	}
}

func (a *App) loadOverviewCmd() tea.Cmd {
	if a.stats == nil {
		return nil
	}
	row := a.sessionsTable.Cursor()
	if row < 0 || row >= len(a.sessions) {
		return nil
	}
	id := a.sessions[row].ID
	stats := a.stats
	ctx := a.ctx
	return func() tea.Msg {
		c, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()
		ov, err := stats.Overview(c, id)
		if err != nil {
			return errMsg{err: err}
		}
		return overviewLoadedMsg{overview: ov}
	}
}

// commandName is the first word of a palette input, the part matched against
// command names.
func commandName(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func appCommands() []Command {
	return []Command{
		{Name: "start", Desc: "start the performance", Run: func(a *App, _ []string) tea.Cmd {
			return a.startRunCmd()
		}},
		{Name: "stop", Desc: "stop the performance", Run: func(a *App, _ []string) tea.Cmd {
			a.engine.Stop()
			return nil
		}},
		{Name: "editor", Desc: "show the editor tab", Run: func(a *App, _ []string) tea.Cmd {
			a.tab = TabEditor
			return nil
		}},
		{Name: "activity", Desc: "show the activity log tab", Run: func(a *App, _ []string) tea.Cmd {
			a.tab = TabActivity
			return nil
		}},
		{Name: "sessions", Desc: "show the session history tab", Run: func(a *App, _ []string) tea.Cmd {
			a.tab = TabSessions
			return a.loadSessionsCmd()
		}},
		{Name: "theme", Desc: "switch color theme: theme <name>", Run: themeCommand},
		{Name: "reset", Desc: "clear all recorded history", Run: resetCommand},
		{Name: "quit", Desc: "quit hagate", Run: func(a *App, _ []string) tea.Cmd {
			a.engine.Shutdown()
			return tea.Quit
		}},
	}
}

func themeCommand(a *App, args []string) tea.Cmd {
	if len(args) == 0 {
		names := make([]string, len(a.themes))
		for i, th := range a.themes {
			names[i] = th.Name
		}
		a.setNotice(noticeInfo, "themes: "+strings.Join(names, ", "))
		return nil
	}
	th := theme.Find(a.themes, args[0])
	if th == nil {
		a.setNotice(noticeWarn, fmt.Sprintf("unknown theme %q", args[0]))
		return nil
	}

	a.styles = NewStyles(*th)
	a.restyle()
	a.cfg.UI.Theme = th.Name
	cfg := a.cfg
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			return errMsg{err: err}
		}
		return noticeMsg{level: noticeInfo, text: "theme saved: " + cfg.UI.Theme}
	}
}

func resetCommand(a *App, _ []string) tea.Cmd {
	if a.engine.State() == engine.StateRunning {
		a.setNotice(noticeWarn, "stop the run before clearing history")
		return nil
	}
	if a.maint == nil {
		return nil
	}
	maint := a.maint
	ctx := a.ctx
	return func() tea.Msg {
		c, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()
		if err := maint.Reset(c); err != nil {
			return errMsg{err: err}
		}
		return historyClearedMsg{}
	}
}

type tickMsg time.Time

type sessionsLoadedMsg struct {
	rows []service.SessionRow
}

type overviewLoadedMsg struct {
	overview *service.SessionOverview
}

type historyClearedMsg struct{}

type errMsg struct {
	err error
}
