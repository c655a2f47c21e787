// Package walker handles directory traversal and ignore-rule pruning
package walker

import (
	"errors"
	"io/fs"

	"github.com/bethropolis/tgrep/internal/ignore"
)

var (
	// ErrCancelled is returned when the walk stopped before completion.
	ErrCancelled = errors.New("walker: cancelled")
	// ErrInvalidRoot wraps failures to stat a search root.
	ErrInvalidRoot = errors.New("walker: invalid root")
)

// StdinPath is the root that stands for standard input. Walking it yields a
// single candidate named StdinName.
const (
	StdinPath = "-"
	StdinName = "<stdin>"
)

// Kind says what a walk Entry represents.
type Kind int

const (
	// KindFile is a candidate to be scanned.
	KindFile Kind = iota
	// KindIgnored was excluded by an ignore rule, hidden or VCS check.
	KindIgnored
	// KindFiltered was rejected by a glob, type or depth filter.
	KindFiltered
	// KindSkipped could not be walked.
	KindSkipped
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindIgnored:
		return "ignored"
	case KindFiltered:
		return "filtered"
	case KindSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SkippedReason clarifies why a file/directory was not scanned.
type SkippedReason string

const (
	ReasonIgnoredHidden     SkippedReason = "Ignored (Hidden Rule)"
	ReasonIgnoredRule       SkippedReason = "Ignored (Gitignore/Custom Rule)"
	ReasonIgnoredVCS        SkippedReason = "Ignored (VCS Directory)"
	ReasonIgnoredIgnoreFile SkippedReason = "Ignored (Ignore File)"
	ReasonFilteredGlob      SkippedReason = "Filtered (Glob/Type Mismatch)"
	ReasonFilteredDepth     SkippedReason = "Filtered (Max Depth)"
	ReasonSkippedSymlink    SkippedReason = "Skipped (Symlink Not Followed)"
	ReasonSkippedLoop       SkippedReason = "Skipped (Symlink Loop)"
	ReasonSkippedPermError  SkippedReason = "Skipped (Permission Error)"
	ReasonSkippedWalkError  SkippedReason = "Skipped (Walk Error)"
	ReasonSkippedInfoError  SkippedReason = "Skipped (File Info Error)"
)

func reasonFor(c ignore.Cause) SkippedReason {
	switch c {
	case ignore.CauseHidden:
		return ReasonIgnoredHidden
	case ignore.CauseVCS:
		return ReasonIgnoredVCS
	case ignore.CauseIgnoreFile:
		return ReasonIgnoredIgnoreFile
	default:
		return ReasonIgnoredRule
	}
}

// Candidate is a file that survived every ignore rule and filter.
type Candidate struct {
	// Path is the search root joined with Rel, as shown to the user.
	Path string
	// Abs is the absolute path used for I/O.
	Abs string
	// Rel is slash-separated and relative to the search root; empty when
	// the root itself is a file.
	Rel   string
	Depth int
	Info  fs.FileInfo
}

// Size returns the file size, or 0 without info.
func (c Candidate) Size() int64 {
	if c.Info == nil {
		return 0
	}
	return c.Info.Size()
}

// Entry is one walk event. Only KindFile entries are scanned; the others
// are reported so that nothing is dropped silently.
type Entry struct {
	Candidate
	Kind   Kind
	IsDir  bool
	Reason SkippedReason
	Err    error
}

// Stats counts what a walk has seen so far.
type Stats struct {
	Files      int64
	Dirs       int64
	Candidates int64
	Ignored    int64
	Filtered   int64
	Skipped    int64
}
