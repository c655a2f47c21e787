// Package ignore evaluates .gitignore-style rules cascaded across a directory tree
package ignore

import (
	"github.com/bethropolis/tgrep/internal/logger"
)

// DefaultIgnoreFile is the per-directory rule file read on descent.
const DefaultIgnoreFile = ".gitignore"

// VCSDir is the version-control metadata directory that is never searched
// unless explicitly included.
const VCSDir = ".git"

// Cause explains why a path was ignored.
type Cause int

const (
	NotIgnored Cause = iota
	CauseRule
	CauseHidden
	CauseVCS
	CauseIgnoreFile
)

func (c Cause) String() string {
	switch c {
	case CauseRule:
		return "rule"
	case CauseHidden:
		return "hidden"
	case CauseVCS:
		return "vcs"
	case CauseIgnoreFile:
		return "ignore-file"
	default:
		return "none"
	}
}

// Tree is the stack of rule sets for the directories between the search root
// and the directory currently being walked. It is owned by a single walker
// and is not safe for concurrent use.
type Tree struct {
	root string

	// base holds rules that sit above the search root: global excludes,
	// .git/info/exclude and ancestor ignore files, outermost first.
	base  []*RuleSet
	stack []*RuleSet
	// overrides are evaluated after every directory rule.
	overrides *RuleSet

	// Configuration flags
	includeHidden  bool
	includeVCS     bool
	disabled       bool
	parents        bool
	globalExcludes bool
	ignoreFiles    []string
	customPatterns []string
	logger         logger.Logger
}

// Config holds configuration options for a Tree
type Config struct {
	IncludeHidden  bool
	IncludeVCS     bool
	Disabled       bool
	Parents        bool
	GlobalExcludes bool
	IgnoreFiles    []string
	CustomRules    []string
	Logger         logger.Logger
}
