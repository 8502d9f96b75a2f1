// Package theme loads the color themes the TUI renders with. Themes live in
// a TOML catalog in the config directory; the file is created with the
// built-in themes on first run so users have a template to edit.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Theme is one [[theme]] block in the catalog.
type Theme struct {
	Name       string `toml:"name"`
	Background string `toml:"background"`
	Surface    string `toml:"surface"`
	Text       string `toml:"text"`
	Subtext    string `toml:"subtext"`
	Accent     string `toml:"accent"`
	Selection  string `toml:"selection"`
	LineNumber string `toml:"line_number"`
	StatusBar  string `toml:"status_bar"`
	Error      string `toml:"error"`
	Warning    string `toml:"warning"`
	Success    string `toml:"success"`
}

// catalogFile is the top-level TOML structure.
type catalogFile struct {
	Theme []Theme `toml:"theme"`
}

const defaultCatalogTOML = `# Hagate themes
# Add new [[theme]] blocks and select one with ui.theme in config.toml.

[[theme]]
name = "hagate-dark"
background = "#1e1e2e"
surface = "#313244"
text = "#cdd6f4"
subtext = "#a6adc8"
accent = "#cba6f7"
selection = "#45475a"
line_number = "#6c7086"
status_bar = "#181825"
error = "#f38ba8"
warning = "#f9e2af"
success = "#a6e3a1"

[[theme]]
name = "hagate-light"
background = "#eff1f5"
surface = "#ccd0da"
text = "#4c4f69"
subtext = "#6c6f85"
accent = "#8839ef"
selection = "#bcc0cc"
line_number = "#8c8fa1"
status_bar = "#e6e9ef"
error = "#d20f39"
warning = "#df8e1d"
success = "#40a02b"
`

// catalogPath returns the full path to the themes.toml file.
func catalogPath(dir string) string {
	return filepath.Join(dir, "themes.toml")
}

// LoadCatalog loads theme definitions from dir/themes.toml. If the file
// doesn't exist, it is created with the built-in themes.
func LoadCatalog(dir string) ([]Theme, error) {
	path := catalogPath(dir)

	// Create catalog file with defaults if missing
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return Builtin(), fmt.Errorf("create config dir: %w", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(defaultCatalogTOML), 0o644); wErr != nil {
			return Builtin(), fmt.Errorf("write default themes: %w", wErr)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Builtin(), fmt.Errorf("read themes: %w", err)
	}
	themes, parseErr := Parse(data)
	if parseErr != nil {
		return Builtin(), parseErr
	}
	return themes, nil
}

// Parse parses TOML bytes into theme definitions.
func Parse(data []byte) ([]Theme, error) {
	var cfg catalogFile
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse themes.toml: %w", err)
	}
	if len(cfg.Theme) == 0 {
		return nil, fmt.Errorf("no themes defined in catalog")
	}
	for i, th := range cfg.Theme {
		if th.Name == "" {
			return nil, fmt.Errorf("theme[%d]: name is required", i)
		}
		cfg.Theme[i] = normalize(th)
	}
	return cfg.Theme, nil
}

// normalize fills missing or malformed colors from the default theme.
func normalize(th Theme) Theme {
	def := Default()
	fix := func(v, fallback string) string {
		v = strings.TrimSpace(v)
		if len(v) == 7 && strings.HasPrefix(v, "#") {
			return strings.ToLower(v)
		}
		return fallback
	}
	th.Background = fix(th.Background, def.Background)
	th.Surface = fix(th.Surface, def.Surface)
	th.Text = fix(th.Text, def.Text)
	th.Subtext = fix(th.Subtext, def.Subtext)
	th.Accent = fix(th.Accent, def.Accent)
	th.Selection = fix(th.Selection, def.Selection)
	th.LineNumber = fix(th.LineNumber, def.LineNumber)
	th.StatusBar = fix(th.StatusBar, def.StatusBar)
	th.Error = fix(th.Error, def.Error)
	th.Warning = fix(th.Warning, def.Warning)
	th.Success = fix(th.Success, def.Success)
	return th
}

// Builtin returns the themes shipped with the binary.
func Builtin() []Theme {
	themes, err := Parse([]byte(defaultCatalogTOML))
	if err != nil {
		panic("builtin themes: " + err.Error())
	}
	return themes
}

// Default returns the stock dark theme.
func Default() Theme {
	return Theme{
		Name:       "hagate-dark",
		Background: "#1e1e2e",
		Surface:    "#313244",
		Text:       "#cdd6f4",
		Subtext:    "#a6adc8",
		Accent:     "#cba6f7",
		Selection:  "#45475a",
		LineNumber: "#6c7086",
		StatusBar:  "#181825",
		Error:      "#f38ba8",
		Warning:    "#f9e2af",
		Success:    "#a6e3a1",
	}
}

// Find looks up a theme by name (case-insensitive).
func Find(themes []Theme, name string) *Theme {
	for i := range themes {
		if strings.EqualFold(themes[i].Name, name) {
			return &themes[i]
		}
	}
	return nil
}
