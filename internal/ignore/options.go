package ignore

import "github.com/bethropolis/tgrep/internal/logger"

// Option functions for configuration
type Option func(*Tree)

// WithIncludeHidden stops dot-files and dot-directories from being ignored.
func WithIncludeHidden(include bool) Option {
	return func(t *Tree) {
		t.includeHidden = include
	}
}

// WithIncludeVCS stops the .git directory from being ignored.
func WithIncludeVCS(include bool) Option {
	return func(t *Tree) {
		t.includeVCS = include
	}
}

// WithCustomRules adds rules, relative to the root, that override every
// ignore file.
func WithCustomRules(patterns []string) Option {
	return func(t *Tree) {
		t.customPatterns = patterns
	}
}

// WithIgnoreFiles sets the names of the per-directory rule files. Files are
// read in the given order, so later names win.
func WithIgnoreFiles(names ...string) Option {
	return func(t *Tree) {
		if len(names) > 0 {
			t.ignoreFiles = names
		}
	}
}

// WithParents enables rules from ignore files above the root, up to the
// top of the enclosing repository, and from .git/info/exclude.
func WithParents(enabled bool) Option {
	return func(t *Tree) {
		t.parents = enabled
	}
}

// WithGlobalExcludes enables the user's core.excludesFile.
func WithGlobalExcludes(enabled bool) Option {
	return func(t *Tree) {
		t.globalExcludes = enabled
	}
}

func WithLogger(log logger.Logger) Option {
	return func(t *Tree) {
		if log != nil {
			t.logger = log
		}
	}
}

// WithDisabled turns off every ignore file. Hidden and VCS rules still apply.
func WithDisabled(disabled bool) Option {
	return func(t *Tree) {
		t.disabled = disabled
	}
}
