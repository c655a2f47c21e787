// Package scanner searches a single file for lines selected by a pattern
package scanner

import (
	"github.com/bethropolis/tgrep/internal/pattern"
)

// Kind classifies a scan outcome.
type Kind int

const (
	// NoMatch means the file was searched and nothing was selected.
	NoMatch Kind = iota
	// Matched means at least one record was produced.
	Matched
	// Skipped means the file was not searched. Err is set when an I/O
	// error was the cause.
	Skipped
)

func (k Kind) String() string {
	switch k {
	case NoMatch:
		return "no-match"
	case Matched:
		return "matched"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Reason explains a Skipped outcome.
type Reason string

const (
	ReasonBinary     Reason = "binary"
	ReasonUnreadable Reason = "unreadable"
	ReasonTooLarge   Reason = "too-large"
	ReasonSpecial    Reason = "special"
)

// Context tells selected lines apart from the lines printed around them.
type Context int

const (
	// NotContext marks a selected line.
	NotContext Context = iota
	// ContextBefore marks a line kept ahead of a selected line.
	ContextBefore
	// ContextAfter marks a line kept behind a selected line.
	ContextAfter
)

// Record is one selected line, or a context line around one.
type Record struct {
	Path string `json:"path"`
	// Line is 1-based.
	Line int `json:"line"`
	// Offset is the byte offset of the start of the line in the file.
	Offset int64 `json:"offset"`
	// Text is the line without its terminator. It is owned by the record.
	Text  []byte         `json:"-"`
	Spans []pattern.Span `json:"spans"`
	// Context is NotContext for selected lines; context lines have no spans.
	Context Context `json:"-"`
}

// IsContext reports whether r surrounds a selected line rather than being one.
func (r Record) IsContext() bool {
	return r.Context != NotContext
}

// Outcome is the result of scanning one file.
type Outcome struct {
	Kind    Kind
	Records []Record
	Reason  Reason
	Err     error
}

// Selected returns the number of selected lines, not counting context.
func (o Outcome) Selected() int {
	n := 0
	for _, r := range o.Records {
		if !r.IsContext() {
			n++
		}
	}
	return n
}
