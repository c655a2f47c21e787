package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// BindFlags registers every command-line flag on fs, bound to the fields of
// c. The current values of c become the flag defaults.
func BindFlags(fs *pflag.FlagSet, c *Config) {
	// Matching
	fs.BoolVarP(&c.IgnoreCase, "ignore-case", "i", c.IgnoreCase, "Search case-insensitively")
	fs.BoolVarP(&c.SmartCase, "smart-case", "S", c.SmartCase, "Ignore case unless the pattern has an upper-case letter")
	fs.BoolVarP(&c.FixedStrings, "fixed-strings", "F", c.FixedStrings, "Treat the pattern as a literal string")
	fs.BoolVarP(&c.WordRegexp, "word-regexp", "w", c.WordRegexp, "Only match whole words")
	fs.BoolVarP(&c.Invert, "invert-match", "v", c.Invert, "Select lines that do not match")
	fs.StringVar(&c.Engine, "engine", c.Engine, "Regex engine: re2 or backtrack")
	fs.BoolP("backtrack", "P", false, "Use the backtracking engine (lookaround, backreferences)")
	fs.IntVarP(&c.MaxCount, "max-count", "m", c.MaxCount, "Stop each file after this many selected lines (0 = no limit)")

	// Filtering
	fs.BoolVar(&c.NoIgnore, "no-ignore", c.NoIgnore, "Do not read any ignore files")
	fs.BoolVar(&c.NoIgnoreParent, "no-ignore-parent", c.NoIgnoreParent, "Do not read ignore files above the search root")
	fs.BoolVar(&c.NoIgnoreGlobal, "no-ignore-global", c.NoIgnoreGlobal, "Do not read the global git excludes file")
	fs.BoolVar(&c.NoIgnoreVCS, "no-ignore-vcs", c.NoIgnoreVCS, "Search version control directories such as .git")
	fs.BoolVar(&c.Hidden, "hidden", c.Hidden, "Search hidden files and directories")
	fs.StringSliceVar(&c.IgnoreFiles, "ignore-file", c.IgnoreFiles, "Additional ignore file names read in every directory")
	fs.StringArrayVarP(&c.Excludes, "exclude", "e", c.Excludes, "Exclude paths matching this gitignore rule (repeatable)")
	fs.StringArrayVarP(&c.Globs, "glob", "g", c.Globs, "Only search paths matching this glob, !glob to exclude (repeatable)")
	fs.StringArrayVarP(&c.Types, "type", "t", c.Types, "Only search files of this type (repeatable)")
	fs.BoolVarP(&c.Follow, "follow", "L", c.Follow, "Follow symbolic links")
	fs.IntVar(&c.MaxDepth, "max-depth", c.MaxDepth, "Descend at most this many directories (0 = no limit)")
	fs.Var(&c.MaxFileSize, "max-filesize", "Skip files larger than this, e.g. 512K, 10M (0 = no limit)")

	// Processing
	fs.IntVarP(&c.Threads, "threads", "j", c.Threads, "Number of search workers")
	fs.BoolVar(&c.Group, "group", c.Group, "Print results in walk order")
	fs.BoolVar(&c.NoMmap, "no-mmap", c.NoMmap, "Never memory-map files")
	fs.Var(&c.Timeout, "timeout", "Stop searching after this long, e.g. 30s, 5m")

	// Output
	fs.BoolVarP(&c.OnlyMatching, "only-matching", "o", c.OnlyMatching, "Print only the matched parts of lines")
	fs.BoolVarP(&c.Count, "count", "c", c.Count, "Print the number of selected lines per file")
	fs.BoolVarP(&c.FilesWithMatches, "files-with-matches", "l", c.FilesWithMatches, "Print only the names of matching files")
	fs.BoolVar(&c.JSON, "json", c.JSON, "Print one JSON object per selected line")
	fs.BoolVarP(&c.NoFilename, "no-filename", "I", c.NoFilename, "Do not print file names")
	fs.BoolVarP(&c.NoLineNumber, "no-line-number", "N", c.NoLineNumber, "Do not print line numbers")
	fs.BoolVar(&c.Heading, "heading", c.Heading, "Print the file name above its matches")
	fs.StringVar(&c.Color, "color", c.Color, "When to use colours: auto, always or never")
	fs.IntVarP(&c.After, "after-context", "A", c.After, "Print this many lines after each selected line")
	fs.IntVarP(&c.Before, "before-context", "B", c.Before, "Print this many lines before each selected line")
	fs.IntP("context", "C", 0, "Print this many lines before and after each selected line")
	fs.IntVar(&c.Width, "width", c.Width, "Truncate lines to this many columns around the match (0 = terminal width when colouring)")

	// Logging
	fs.CountVarP(&c.Verbose, "verbose", "V", "Increase log verbosity (repeatable)")
	fs.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "Only log errors")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Set the log level (debug, info, warn, error, none)")
	fs.BoolVar(&c.Stats, "stats", c.Stats, "Print search statistics")
	fs.BoolVar(&c.ShowSkipped, "show-skipped", c.ShowSkipped, "List files and directories that could not be searched")
	fs.BoolVar(&c.ShowIgnored, "show-ignored", c.ShowIgnored, "List paths excluded by ignore rules")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Path to a config file (TOML, YAML or JSON)")
}

// ApplyFlags copies every flag that was set on fs into dst, so explicit
// flags override config file values.
func ApplyFlags(fs *pflag.FlagSet, dst *Config) error {
	target := pflag.NewFlagSet("apply", pflag.ContinueOnError)
	BindFlags(target, dst)

	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		if f.Name == "backtrack" {
			if f.Value.String() == "true" {
				dst.Engine = "backtrack"
			}
			return
		}
		if f.Name == "context" {
			// -A and -B win over -C.
			for _, name := range []string{"before-context", "after-context"} {
				if fs.Changed(name) {
					continue
				}
				if setErr := target.Set(name, f.Value.String()); setErr != nil {
					err = invalid(f.Name, "%v", setErr)
				}
			}
			return
		}
		to := target.Lookup(f.Name)
		if to == nil {
			return
		}
		if from, ok := f.Value.(pflag.SliceValue); ok {
			if into, ok := to.Value.(pflag.SliceValue); ok {
				err = into.Replace(from.GetSlice())
				return
			}
		}
		if setErr := to.Value.Set(f.Value.String()); setErr != nil {
			err = invalid(f.Name, "%v", setErr)
		}
	})
	return err
}

// stdin is where a search without path arguments reads from.
var stdin = os.Stdin

// stdinReadable reports whether f is something to search rather than a
// terminal: a regular file, a named pipe or a socket.
func stdinReadable(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	mode := info.Mode()
	return mode.IsRegular() || mode&(os.ModeNamedPipe|os.ModeSocket) != 0
}

// Resolve builds the effective configuration: defaults, then the config
// file, then the flags set on fs, then the positional arguments. Without
// path arguments standard input is searched when it is redirected, and the
// working directory otherwise.
func Resolve(fs *pflag.FlagSet, args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, invalid("pattern", "a search pattern is required")
	}

	explicit, _ := fs.GetString("config")
	cwd, err := os.Getwd()
	if err != nil {
		return nil, &Error{Field: "cwd", Err: err}
	}
	path, err := Find(explicit, cwd)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		if err := Load(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyFlags(fs, cfg); err != nil {
		return nil, err
	}

	cfg.Pattern = args[0]
	cfg.Paths = args[1:]
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
		if stdinReadable(stdin) {
			cfg.Paths = []string{"-"}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// String describes where the settings came from, for debug logging.
func (c *Config) String() string {
	src := "defaults and flags"
	if c.ConfigFile != "" {
		src = c.ConfigFile
	}
	return fmt.Sprintf("pattern=%q paths=%v engine=%s threads=%d (from %s)", c.Pattern, c.Paths, c.Engine, c.Threads, src)
}
