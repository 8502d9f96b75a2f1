package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mako34/Hagate/internal/config"
	"github.com/mako34/Hagate/internal/database"
	"github.com/mako34/Hagate/internal/database/repository"
	"github.com/mako34/Hagate/internal/engine"
	"github.com/mako34/Hagate/internal/logging"
	"github.com/mako34/Hagate/internal/randsel"
	"github.com/mako34/Hagate/internal/service"
	"github.com/mako34/Hagate/internal/theme"
	"github.com/mako34/Hagate/internal/tui"
	"github.com/mako34/Hagate/internal/workspace"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println("hagate " + version)
		return
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer lg.Close()
	logger := lg.Logger

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	sessionRepo := repository.NewSessionRepo(db)
	eventRepo := repository.NewEventRepo(db)

	recorder := &service.ActivityRecorder{Sessions: sessionRepo, Events: eventRepo, Log: logger}
	stats := &service.Stats{Sessions: sessionRepo, Events: eventRepo}
	maintenance := &service.MaintenanceService{DB: db}

	root, err := filepath.Abs(cfg.Workspace.Root)
	if err != nil {
		log.Fatalf("workspace root: %v", err)
	}
	scanner := &workspace.Scanner{
		Root:       root,
		Include:    cfg.Workspace.Include,
		Exclude:    cfg.Workspace.Exclude,
		Extensions: cfg.Workspace.Extensions,
		UseGit:     cfg.Workspace.UseGit,
		MaxFiles:   cfg.Workspace.MaxFiles,
		Log:        logger,
	}

	themes, err := theme.LoadCatalog(config.Dir())
	if err != nil {
		logger.Warn("theme catalog unavailable, using builtins", "err", err)
		themes = theme.Builtin()
	}

	bridge := tui.NewBridge(logger, nil)
	if cfg.UI.Clipboard {
		bridge.EnableClipboard(os.Stderr)
	}

	eng := engine.New(engine.Deps{
		Host:      bridge,
		Files:     scanner,
		Workspace: root,
		Rand:      randsel.New(cfg.Engine.Seed),
		Log:       logger,
		Observers: []engine.Observer{recorder, bridge.RunObserver()},
	}, engine.Timings{
		SelectPause:    cfg.Engine.SelectPause,
		SwitchPause:    cfg.Engine.SwitchPause,
		CopyPause:      cfg.Engine.CopyPause,
		PastePause:     cfg.Engine.PastePause,
		DiscardPause:   cfg.Engine.DiscardPause,
		SelectionLines: cfg.Engine.SelectionLines,
		CopyLines:      cfg.Engine.CopyLines,
		ScrollBudget:   cfg.Scroll.Budget,
		ScrollInterval: cfg.Scroll.Interval,
		ScrollStride:   cfg.Scroll.Stride,
	})

	app := tui.NewApp(ctx, cfg, eng, stats, maintenance, lg.Feed, bridge, themes, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	bridge.Attach(p)

	logger.Info("hagate starting", "version", version, "workspace", root)
	if _, err := p.Run(); err != nil {
		eng.Shutdown()
		fmt.Printf("error: %v\n", err)
		return
	}
	eng.Shutdown()
}
