// Package setup builds the search components from the configuration
package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bethropolis/tgrep/internal/config"
	"github.com/bethropolis/tgrep/internal/filter"
	"github.com/bethropolis/tgrep/internal/ignore"
	"github.com/bethropolis/tgrep/internal/logger"
	"github.com/bethropolis/tgrep/internal/stop"
	"github.com/bethropolis/tgrep/internal/walker"
)

// InfoLogger wraps the Info method for status updates
type InfoLogger func(format string, args ...interface{})

// IgnoreConfig maps the filtering settings to ignore tree settings.
func IgnoreConfig(cfg *config.Config, log logger.Logger) ignore.Config {
	return ignore.Config{
		IncludeHidden:  cfg.Hidden,
		IncludeVCS:     cfg.NoIgnoreVCS,
		Disabled:       cfg.NoIgnore,
		Parents:        !cfg.NoIgnore && !cfg.NoIgnoreParent,
		GlobalExcludes: !cfg.NoIgnore && !cfg.NoIgnoreGlobal,
		IgnoreFiles:    ignoreFiles(cfg.IgnoreFiles),
		CustomRules:    cleanPatterns(cfg.Excludes),
		Logger:         log,
	}
}

// ignoreFiles returns the per-directory rule file names: .gitignore, then
// any extra names, which take precedence.
func ignoreFiles(extra []string) []string {
	names := []string{".gitignore"}
	for _, name := range cleanPatterns(extra) {
		if name != ".gitignore" {
			names = append(names, name)
		}
	}
	return names
}

func cleanPatterns(patterns []string) []string {
	var clean []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	return clean
}

// ConfigureWalker sets up the walker options based on the config
func ConfigureWalker(cfg *config.Config, log logger.Logger, flag *stop.Flag, infoLog InfoLogger) ([]walker.Option, error) {
	ic := IgnoreConfig(cfg, log)
	if len(ic.CustomRules) > 0 {
		infoLog("Using exclude rules: %v", ic.CustomRules)
	}
	if cfg.NoIgnore {
		infoLog("Ignore files disabled.")
	}
	if cfg.Hidden {
		infoLog("Including hidden files/directories.")
	} else {
		infoLog("Ignoring hidden files/directories (starting with '.').")
	}

	f, err := filter.New(cfg.Globs, cfg.Types)
	if err != nil {
		return nil, &config.Error{Field: "glob", Err: err}
	}
	if f != nil {
		infoLog("Filtering enabled: globs=%v types=%v", cfg.Globs, cfg.Types)
	}

	walkOptions := []walker.Option{
		walker.WithLogger(log),
		walker.WithFollowSymlinks(cfg.Follow),
		walker.WithFilter(f),
		walker.WithStop(flag),
		walker.WithTreeOptions(ic.Options()...),
	}
	if cfg.MaxDepth > 0 {
		walkOptions = append(walkOptions, walker.WithMaxDepth(cfg.MaxDepth))
		infoLog("Descending at most %d directories.", cfg.MaxDepth)
	}
	return walkOptions, nil
}

// ValidateRoots checks that every search path exists.
func ValidateRoots(paths []string) error {
	for _, p := range paths {
		if p == walker.StdinPath {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				err = fmt.Errorf("%w: %s not found", walker.ErrInvalidRoot, filepath.Clean(p))
			} else {
				err = fmt.Errorf("%w: %v", walker.ErrInvalidRoot, err)
			}
			return &config.Error{Field: "path", Err: err}
		}
	}
	return nil
}
