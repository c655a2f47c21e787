// Package config holds the search settings and loads them from config files
// and command-line flags
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/bethropolis/tgrep/internal/filter"
	"github.com/bethropolis/tgrep/internal/logger"
	"github.com/bethropolis/tgrep/internal/pattern"
)

// ErrConfig marks errors that abort a run before anything is searched.
var ErrConfig = errors.New("configuration error")

// Error wraps a configuration problem.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrConfig, e.Err}
}

func invalid(field, format string, args ...interface{}) error {
	return &Error{Field: field, Err: fmt.Errorf(format, args...)}
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all application configuration settings
type Config struct {
	// Arguments
	Pattern string   `toml:"-" yaml:"-" json:"-"`
	Paths   []string `toml:"-" yaml:"-" json:"-"`

	// Matching settings
	IgnoreCase   bool   `toml:"ignore_case" yaml:"ignore_case" json:"ignore_case"`
	SmartCase    bool   `toml:"smart_case" yaml:"smart_case" json:"smart_case"`
	FixedStrings bool   `toml:"fixed_strings" yaml:"fixed_strings" json:"fixed_strings"`
	WordRegexp   bool   `toml:"word_regexp" yaml:"word_regexp" json:"word_regexp"`
	Invert       bool   `toml:"invert_match" yaml:"invert_match" json:"invert_match"`
	Engine       string `toml:"engine" yaml:"engine" json:"engine"`
	MaxCount     int    `toml:"max_count" yaml:"max_count" json:"max_count"`

	// Filtering settings
	NoIgnore       bool     `toml:"no_ignore" yaml:"no_ignore" json:"no_ignore"`
	NoIgnoreParent bool     `toml:"no_ignore_parent" yaml:"no_ignore_parent" json:"no_ignore_parent"`
	NoIgnoreGlobal bool     `toml:"no_ignore_global" yaml:"no_ignore_global" json:"no_ignore_global"`
	NoIgnoreVCS    bool     `toml:"no_ignore_vcs" yaml:"no_ignore_vcs" json:"no_ignore_vcs"`
	Hidden         bool     `toml:"hidden" yaml:"hidden" json:"hidden"`
	IgnoreFiles    []string `toml:"ignore_files" yaml:"ignore_files" json:"ignore_files"`
	Excludes       []string `toml:"exclude" yaml:"exclude" json:"exclude"`
	Globs          []string `toml:"glob" yaml:"glob" json:"glob"`
	Types          []string `toml:"type" yaml:"type" json:"type"`
	Follow         bool     `toml:"follow" yaml:"follow" json:"follow"`
	MaxDepth       int      `toml:"max_depth" yaml:"max_depth" json:"max_depth"`
	MaxFileSize    ByteSize `toml:"max_filesize" yaml:"max_filesize" json:"max_filesize"`

	// Processing settings
	Threads int      `toml:"threads" yaml:"threads" json:"threads"`
	Group   bool     `toml:"group" yaml:"group" json:"group"`
	NoMmap  bool     `toml:"no_mmap" yaml:"no_mmap" json:"no_mmap"`
	Timeout Duration `toml:"timeout" yaml:"timeout" json:"timeout"`

	// Output format
	OnlyMatching     bool   `toml:"only_matching" yaml:"only_matching" json:"only_matching"`
	Count            bool   `toml:"count" yaml:"count" json:"count"`
	FilesWithMatches bool   `toml:"files_with_matches" yaml:"files_with_matches" json:"files_with_matches"`
	JSON             bool   `toml:"json" yaml:"json" json:"json"`
	NoFilename       bool   `toml:"no_filename" yaml:"no_filename" json:"no_filename"`
	NoLineNumber     bool   `toml:"no_line_number" yaml:"no_line_number" json:"no_line_number"`
	Heading          bool   `toml:"heading" yaml:"heading" json:"heading"`
	Color            string `toml:"color" yaml:"color" json:"color"`
	Width            int    `toml:"width" yaml:"width" json:"width"`
	Before           int    `toml:"before_context" yaml:"before_context" json:"before_context"`
	After            int    `toml:"after_context" yaml:"after_context" json:"after_context"`

	// Logging settings
	Verbose     int    `toml:"verbose" yaml:"verbose" json:"verbose"`
	Quiet       bool   `toml:"quiet" yaml:"quiet" json:"quiet"`
	LogLevel    string `toml:"log_level" yaml:"log_level" json:"log_level"`
	Stats       bool   `toml:"stats" yaml:"stats" json:"stats"`
	ShowSkipped bool   `toml:"show_skipped" yaml:"show_skipped" json:"show_skipped"`
	ShowIgnored bool   `toml:"show_ignored" yaml:"show_ignored" json:"show_ignored"`

	// ConfigFile is the file the settings were loaded from, if any.
	ConfigFile string `toml:"-" yaml:"-" json:"-"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Engine:  string(pattern.EngineRE2),
		Threads: runtime.NumCPU(),
		Color:   ColorAuto,
	}
}

// Validate checks the settings that do not depend on the filesystem.
func (c *Config) Validate() error {
	if _, err := pattern.ParseEngine(c.Engine); err != nil {
		return invalid("engine", "%v", err)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return invalid("color", "must be auto, always or never, got %q", c.Color)
	}
	if c.LogLevel != "" {
		if _, ok := logger.ParseLevel(c.LogLevel); !ok {
			return invalid("log-level", "unknown level %q", c.LogLevel)
		}
	}
	if c.Threads < 1 {
		return invalid("threads", "must be at least 1, got %d", c.Threads)
	}
	for name, v := range map[string]int{
		"max-count":      c.MaxCount,
		"max-depth":      c.MaxDepth,
		"width":          c.Width,
		"before-context": c.Before,
		"after-context":  c.After,
	} {
		if v < 0 {
			return invalid(name, "must not be negative, got %d", v)
		}
	}
	if c.MaxFileSize < 0 {
		return invalid("max-filesize", "must not be negative")
	}
	if _, err := filter.New(c.Globs, c.Types); err != nil {
		return invalid("glob", "%v", err)
	}
	return nil
}

// PatternOptions converts the matching settings.
func (c *Config) PatternOptions() pattern.Options {
	engine, _ := pattern.ParseEngine(c.Engine)
	return pattern.Options{
		IgnoreCase: c.IgnoreCase,
		SmartCase:  c.SmartCase,
		Literal:    c.FixedStrings,
		Word:       c.WordRegexp,
		Invert:     c.Invert,
		Engine:     engine,
	}
}

// HasContext reports whether context lines are printed. Only the line and
// JSON outputs show them.
func (c *Config) HasContext() bool {
	if c.Before == 0 && c.After == 0 {
		return false
	}
	return c.JSON || !(c.FilesWithMatches || c.Count || c.OnlyMatching)
}

// LogLevelValue resolves the effective log level. An explicit level wins
// over -V and --quiet.
func (c *Config) LogLevelValue() logger.Level {
	if c.LogLevel != "" {
		if level, ok := logger.ParseLevel(c.LogLevel); ok {
			return level
		}
	}
	if c.Quiet {
		return logger.LevelError
	}
	return logger.FromVerbosity(c.Verbose)
}

// UseColors reports whether output written to f should be coloured.
func (c *Config) UseColors(f *os.File) bool {
	switch strings.ToLower(c.Color) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
