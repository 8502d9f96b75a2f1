package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Workspace WorkspaceConfig
	Engine    EngineConfig
	Scroll    ScrollConfig
	Database  DatabaseConfig
	Log       LogConfig
	UI        UIConfig
}

// WorkspaceConfig controls which files the simulator works on.
type WorkspaceConfig struct {
	Root       string
	Include    []string
	Exclude    []string
	Extensions []string
	UseGit     bool `mapstructure:"use_git"`
	MaxFiles   int  `mapstructure:"max_files"`
}

// EngineConfig holds the activity cadence.
type EngineConfig struct {
	SelectPause    time.Duration `mapstructure:"select_pause"`
	SwitchPause    time.Duration `mapstructure:"switch_pause"`
	CopyPause      time.Duration `mapstructure:"copy_pause"`
	PastePause     time.Duration `mapstructure:"paste_pause"`
	DiscardPause   time.Duration `mapstructure:"discard_pause"`
	SelectionLines int           `mapstructure:"selection_lines"`
	CopyLines      int           `mapstructure:"copy_lines"`
	Seed           int64
}

// ScrollConfig holds the scroll animation shape.
type ScrollConfig struct {
	Budget   time.Duration
	Interval time.Duration
	Stride   int
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds log sink settings.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme     string
	Clipboard bool
}

// Dir returns the hagate config directory.
func Dir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "hagate")
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "hagate")
}

// Load reads configuration from file and env. Env var overrides use prefix HAGATE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("workspace.root", ".")
	v.SetDefault("workspace.include", []string{})
	v.SetDefault("workspace.exclude", []string{})
	v.SetDefault("workspace.extensions", []string{".ts", ".js", ".json", ".md", ".txt", ".html", ".css", ".tsx", ".jsx"})
	v.SetDefault("workspace.use_git", true)
	v.SetDefault("workspace.max_files", 0)
	v.SetDefault("engine.select_pause", "2s")
	v.SetDefault("engine.switch_pause", "3s")
	v.SetDefault("engine.copy_pause", "500ms")
	v.SetDefault("engine.paste_pause", "6s")
	v.SetDefault("engine.discard_pause", "500ms")
	v.SetDefault("engine.selection_lines", 3)
	v.SetDefault("engine.copy_lines", 5)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("scroll.budget", "5s")
	v.SetDefault("scroll.interval", "200ms")
	v.SetDefault("scroll.stride", 10)
	v.SetDefault("database.path", filepath.Join(dataDir(), "hagate.db"))
	v.SetDefault("log.path", filepath.Join(dataDir(), "hagate.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.theme", "hagate-dark")
	v.SetDefault("ui.clipboard", true)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("HAGATE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("HAGATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c.normalized(), nil
}

// normalized cleans up user-supplied values: extensions get a leading dot
// and lower case, non-positive cadence values fall back to defaults.
func (c Config) normalized() Config {
	exts := make([]string, 0, len(c.Workspace.Extensions))
	for _, e := range c.Workspace.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	c.Workspace.Extensions = exts

	if c.Workspace.Root == "" {
		c.Workspace.Root = "."
	}
	if c.Workspace.MaxFiles < 0 {
		c.Workspace.MaxFiles = 0
	}
	if c.Engine.SelectionLines < 1 {
		c.Engine.SelectionLines = 3
	}
	if c.Engine.CopyLines < 1 {
		c.Engine.CopyLines = 5
	}
	if c.Scroll.Stride < 1 {
		c.Scroll.Stride = 10
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "error":
		c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	default:
		c.Log.Level = "info"
	}
	return c
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the TUI when the user switches themes.
func Save(cfg Config) error {
	path := os.Getenv("HAGATE_CONFIG")
	if path == "" {
		path = filepath.Join(Dir(), "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("workspace.root", cfg.Workspace.Root)
	v.Set("workspace.include", cfg.Workspace.Include)
	v.Set("workspace.exclude", cfg.Workspace.Exclude)
	v.Set("workspace.extensions", cfg.Workspace.Extensions)
	v.Set("workspace.use_git", cfg.Workspace.UseGit)
	v.Set("workspace.max_files", cfg.Workspace.MaxFiles)
	v.Set("engine.select_pause", cfg.Engine.SelectPause.String())
	v.Set("engine.switch_pause", cfg.Engine.SwitchPause.String())
	v.Set("engine.copy_pause", cfg.Engine.CopyPause.String())
	v.Set("engine.paste_pause", cfg.Engine.PastePause.String())
	v.Set("engine.discard_pause", cfg.Engine.DiscardPause.String())
	v.Set("engine.selection_lines", cfg.Engine.SelectionLines)
	v.Set("engine.copy_lines", cfg.Engine.CopyLines)
	v.Set("engine.seed", cfg.Engine.Seed)
	v.Set("scroll.budget", cfg.Scroll.Budget.String())
	v.Set("scroll.interval", cfg.Scroll.Interval.String())
	v.Set("scroll.stride", cfg.Scroll.Stride)
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.clipboard", cfg.UI.Clipboard)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
