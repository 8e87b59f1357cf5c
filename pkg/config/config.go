// Package config loads flowlane configuration from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/flowlane/config.toml
// (~/.config/flowlane/config.toml). A missing file yields [Default].
//
//	[log]
//	level = "info"
//
//	[workspace]
//	dir = ""
//
//	[editor]
//	orientation = "horizontal"
//	dark_mode = false
//	background = "dots"
//	snap_to_grid = true
//
//	[server]
//	addr = "127.0.0.1:7420"
//
//	[cache]
//	enabled = true
//	dir = ""
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
)

// DefaultAddr is the address the API server listens on by default.
const DefaultAddr = "127.0.0.1:7420"

var levels = []string{"debug", "info", "warn", "error"}

// Config is the full configuration file.
type Config struct {
	Log       Log       `toml:"log"`
	Workspace Workspace `toml:"workspace"`
	Editor    Editor    `toml:"editor"`
	Server    Server    `toml:"server"`
	Cache     Cache     `toml:"cache"`
}

type Log struct {
	Level string `toml:"level"`
}

type Workspace struct {
	// Dir overrides the workspace directory. Empty selects the XDG default.
	Dir string `toml:"dir"`
}

// Editor holds the preferences applied to new documents.
type Editor struct {
	Orientation string `toml:"orientation"`
	DarkMode    bool   `toml:"dark_mode"`
	Background  string `toml:"background"`
	SnapToGrid  bool   `toml:"snap_to_grid"`
}

type Server struct {
	Addr string `toml:"addr"`
}

// Cache controls the SVG render cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
	// Dir overrides the cache directory. Empty selects the XDG default.
	Dir string `toml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	ui := diagram.DefaultUI()
	return Config{
		Log: Log{Level: "info"},
		Editor: Editor{
			Orientation: string(ui.LaneOrientation),
			DarkMode:    ui.DarkMode,
			Background:  ui.Background,
			SnapToGrid:  ui.SnapToGrid,
		},
		Server: Server{Addr: DefaultAddr},
		Cache:  Cache{Enabled: true},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "flowlane", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "flowlane", "config.toml"), nil
}

// Load reads the configuration at path over [Default]. An empty path
// selects [DefaultPath]. A missing file is not an error. Unknown keys and
// invalid values are [errors.ErrCodeInvalidConfig] errors.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unknown log levels, orientations and backgrounds.
func (c Config) Validate() error {
	if !slices.Contains(levels, c.Log.Level) {
		return errors.New(errors.ErrCodeInvalidConfig, "log.level must be one of %s, got %q", strings.Join(levels, ", "), c.Log.Level)
	}
	if !diagram.Orientation(c.Editor.Orientation).Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "editor.orientation must be horizontal or vertical, got %q", c.Editor.Orientation)
	}
	if !diagram.ValidBackgrounds[c.Editor.Background] {
		return errors.New(errors.ErrCodeInvalidConfig, "editor.background %q is not supported", c.Editor.Background)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	return nil
}

// LogLevel returns the configured level for charmbracelet/log.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// UI returns the factory display preferences with the editor settings
// applied.
func (c Config) UI() diagram.UIState {
	ui := diagram.DefaultUI()
	ui.LaneOrientation = diagram.Orientation(c.Editor.Orientation)
	ui.DarkMode = c.Editor.DarkMode
	ui.Background = c.Editor.Background
	ui.SnapToGrid = c.Editor.SnapToGrid
	return ui
}

// Apply replaces the UI of doc with the editor settings and mirrors the
// orientation onto its lanes.
func (c Config) Apply(doc diagram.Document) diagram.Document {
	doc.UI = c.UI()
	doc.Lanes = slices.Clone(doc.Lanes)
	for i := range doc.Lanes {
		doc.Lanes[i].Orientation = doc.UI.LaneOrientation
	}
	return doc
}
