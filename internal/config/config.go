// Package config loads gridstorm configuration from a TOML file with an
// environment overlay, and watches the file for live column changes.
//
// Configuration sources, lowest to highest priority:
//  1. Built-in defaults
//  2. The TOML file (~/.config/gridstorm/config.toml or --config)
//  3. GRIDSTORM_* environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/grid/sorting"
	"github.com/dshills/gridstorm/internal/logging"
)

// Config is the full gridstorm configuration.
type Config struct {
	Grid    GridConfig     `toml:"grid"`
	Data    DataConfig     `toml:"data"`
	Logging LoggingConfig  `toml:"logging"`
	Columns []ColumnConfig `toml:"columns"`
}

// GridConfig holds widget behaviour.
type GridConfig struct {
	ShowChildren      bool   `toml:"show_children"`
	SortColumn        string `toml:"sort_column"`
	SortOrder         string `toml:"sort_order"`
	EmptyText         string `toml:"empty_text"`
	EditOnDoubleClick bool   `toml:"edit_on_double_click"`

	// ScriptTimeout bounds each Lua hook call, e.g. "100ms".
	ScriptTimeout string `toml:"script_timeout"`
}

// DataConfig locates the JSON dataset.
type DataConfig struct {
	Path string `toml:"path"`

	// RowsPath is a gjson path to the row array; empty means the document
	// root.
	RowsPath string `toml:"rows_path"`

	ChildrenKey string `toml:"children_key"`

	// SaveEdits writes committed edits back to Path.
	SaveEdits bool `toml:"save_edits"`
}

// LoggingConfig selects the log level and file. The terminal belongs to the
// grid, so logs never go to stderr while it runs.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ColumnConfig is one [[columns]] entry.
type ColumnConfig struct {
	Label    string `toml:"label"`
	Field    string `toml:"field"`
	Index    *int   `toml:"index"`
	Width    int    `toml:"width"`
	Spring   bool   `toml:"spring"`
	Wrap     bool   `toml:"wrap"`
	Align    string `toml:"align"`
	ReadOnly bool   `toml:"readonly"`
	Sortable *bool  `toml:"sortable"`
	Visible  *bool  `toml:"visible"`

	Editor  string         `toml:"editor"`
	Options []OptionConfig `toml:"options"`

	// Lua snippets. Formatter, Tooltip and Style receive (value, row);
	// Validate receives (old, new, row).
	Formatter string `toml:"formatter"`
	Tooltip   string `toml:"tooltip"`
	Validate  string `toml:"validate"`
	Style     string `toml:"style"`
}

// OptionConfig is one dropdown or flag choice.
type OptionConfig struct {
	Key   string `toml:"key"`
	Label string `toml:"label"`
	Value any    `toml:"value"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			SortOrder:         "asc",
			EditOnDoubleClick: true,
			ScriptTimeout:     "100ms",
		},
		Data: DataConfig{
			ChildrenKey: "children",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gridstorm.toml"
	}
	return filepath.Join(dir, "gridstorm", "config.toml")
}

// Validate checks values that cannot be caught by decoding.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Grid.SortOrder) {
	case "", "asc", "ascending", "desc", "descending":
	default:
		return &ValidationError{Path: "grid.sort_order", Value: c.Grid.SortOrder, Message: "must be asc or desc"}
	}
	if _, err := c.ScriptTimeout(); err != nil {
		return &ValidationError{Path: "grid.script_timeout", Value: c.Grid.ScriptTimeout, Message: err.Error()}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Value: c.Logging.Level, Message: "must be debug, info, warn or error"}
	}
	for i, col := range c.Columns {
		path := fmt.Sprintf("columns[%d]", i)
		if col.Field == "" && col.Index == nil {
			return &ValidationError{Path: path, Value: col.Label, Message: "needs a field or an index"}
		}
		if col.Width < 0 {
			return &ValidationError{Path: path + ".width", Value: col.Width, Message: "must not be negative"}
		}
		if col.Editor != "" && model.ParseEditorKind(strings.ToLower(col.Editor)) == model.EditorAuto && !strings.EqualFold(col.Editor, "auto") {
			return &ValidationError{Path: path + ".editor", Value: col.Editor, Message: "unknown editor kind"}
		}
	}
	return nil
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// ScriptTimeout returns the parsed Lua hook timeout; zero when unset.
func (c *Config) ScriptTimeout() (time.Duration, error) {
	if c.Grid.ScriptTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Grid.ScriptTimeout)
}

// Sort resolves the configured sort column against cols. The column may be
// named by field or by label. It returns sorting.NoColumn when unset or
// unknown.
func (c *Config) Sort(cols []*model.Column) (int, sorting.Order) {
	order := sorting.ParseOrder(c.Grid.SortOrder)
	name := c.Grid.SortColumn
	if name == "" {
		return sorting.NoColumn, order
	}
	for i, col := range cols {
		if col.Field == name || strings.EqualFold(col.Label, name) {
			return i, order
		}
	}
	return sorting.NoColumn, order
}
