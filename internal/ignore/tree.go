package ignore

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/bethropolis/tgrep/internal/logger"
)

// New creates an empty Tree rooted at root and loads the rules that apply
// from outside the root (parents, global excludes) when enabled.
func New(root string, opts ...Option) (*Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to get absolute path for root '%s': %w", root, err)
	}

	t := &Tree{
		root:        absRoot,
		ignoreFiles: []string{DefaultIgnoreFile},
		logger:      logger.Nop{},
	}
	for _, opt := range opts {
		opt(t)
	}

	t.init()
	return t, nil
}

func (t *Tree) init() {
	t.logger.Debug("initializing for root %s (hidden=%v, vcs=%v, disabled=%v)",
		t.root, t.includeHidden, t.includeVCS, t.disabled)

	if len(t.customPatterns) > 0 {
		t.overrides = ParseLines(t.customPatterns, t.root, math.MaxInt32, "--exclude")
		t.logger.Debug("loaded %d custom rules", t.overrides.Len())
	}

	if t.disabled {
		t.logger.Debug("ignore files disabled, skipping parent and global rules")
		return
	}

	top, inRepo := RepoTop(t.root)

	if t.globalExcludes {
		dir := t.root
		if inRepo {
			dir = top
		}
		rs, err := LoadGlobalExcludes(dir)
		if err != nil {
			t.logger.Warn("global excludes unavailable: %v", err)
		} else if rs.Len() > 0 {
			t.base = append(t.base, rs)
			t.logger.Debug("loaded %d global exclude rules", rs.Len())
		}
	}

	if t.parents && inRepo {
		rs, err := LoadRepoExcludes(top)
		if err != nil {
			t.logger.Warn("%v", err)
		}
		if rs.Len() > 0 {
			t.base = append(t.base, rs)
		}
		for _, rs := range LoadAncestors(t.root, t.ignoreFiles, t.logger) {
			t.base = append(t.base, rs)
		}
	}
}

// Root returns the absolute search root.
func (t *Tree) Root() string {
	return t.root
}

// Depth returns the number of pushed rule sets.
func (t *Tree) Depth() int {
	return len(t.stack)
}

// Push reads the ignore files in dir and makes their rules active for
// everything below dir. A missing or unreadable file yields an empty set.
func (t *Tree) Push(dir string) *RuleSet {
	rs := &RuleSet{Dir: dir, Depth: len(t.stack)}
	if !t.disabled {
		for _, name := range t.ignoreFiles {
			loaded, err := ParseFile(filepath.Join(dir, name), dir, rs.Depth)
			if err != nil {
				t.logger.Warn("treating %s as having no extra rules: %v", dir, err)
				continue
			}
			rs.append(loaded)
		}
		if rs.Len() > 0 {
			t.logger.Debug("pushed %d rules for %s", rs.Len(), dir)
		}
	}
	t.stack = append(t.stack, rs)
	return rs
}

// Pop removes the most recently pushed rule set.
func (t *Tree) Pop() {
	if len(t.stack) == 0 {
		return
	}
	t.stack[len(t.stack)-1] = nil
	t.stack = t.stack[:len(t.stack)-1]
}

// IsIgnored reports whether the absolute path should be excluded.
func (t *Tree) IsIgnored(path string, isDir bool) bool {
	return t.Check(path, isDir) != NotIgnored
}

// Check reports why path is ignored, or NotIgnored. Rule sets are evaluated
// from the outermost to the innermost and the last verdict wins, so the
// deepest applicable rule decides.
func (t *Tree) Check(path string, isDir bool) Cause {
	if t == nil || path == t.root {
		return NotIgnored
	}

	if rel, ok := relativeTo(t.root, path); ok {
		parts := strings.Split(rel, "/")
		for _, part := range parts {
			if part == VCSDir && !t.includeVCS {
				return CauseVCS
			}
			if !t.includeHidden && isHidden(part) {
				return CauseHidden
			}
		}
		if !isDir && !t.disabled && t.isIgnoreFile(parts[len(parts)-1]) {
			return CauseIgnoreFile
		}
	}

	ignored := false
	apply := func(rs *RuleSet) {
		if rs.Len() == 0 {
			return
		}
		rel, ok := relativeTo(rs.Dir, path)
		if !ok {
			return
		}
		if v, applies := rs.matchPath(rel, isDir); applies {
			ignored = v
		}
	}
	for _, rs := range t.base {
		apply(rs)
	}
	for _, rs := range t.stack {
		apply(rs)
	}
	apply(t.overrides)

	if ignored {
		return CauseRule
	}
	return NotIgnored
}

func (t *Tree) isIgnoreFile(name string) bool {
	for _, f := range t.ignoreFiles {
		if name == f {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

// relativeTo returns path relative to dir in slash form, or ok=false if path
// is not strictly below dir.
func relativeTo(dir, path string) (string, bool) {
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(path, prefix) || len(path) == len(prefix) {
		return "", false
	}
	return filepath.ToSlash(path[len(prefix):]), true
}
