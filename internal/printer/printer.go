// Package printer handles output formatting and display
package printer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/bethropolis/tgrep/internal/pattern"
	"github.com/bethropolis/tgrep/internal/scanner"
)

// Mode selects what is printed for each matching file.
type Mode int

const (
	// ModeLines prints every selected line.
	ModeLines Mode = iota
	// ModeOnlyMatching prints each matched part on its own line.
	ModeOnlyMatching
	// ModeCount prints the number of selected lines per file.
	ModeCount
	// ModeFiles prints only the names of matching files.
	ModeFiles
	// ModeJSON prints one JSON object per selected line.
	ModeJSON
)

// ParseMode maps the output flags to a Mode. Later flags win: json, files,
// count, only-matching.
func ParseMode(onlyMatching, count, files, jsonOutput bool) Mode {
	switch {
	case jsonOutput:
		return ModeJSON
	case files:
		return ModeFiles
	case count:
		return ModeCount
	case onlyMatching:
		return ModeOnlyMatching
	default:
		return ModeLines
	}
}

// Printer handles output formatting and writing to the configured output destination
type Printer struct {
	output       *bufio.Writer
	count        atomic.Int64
	mode         Mode
	useColors    bool
	withFilename bool
	lineNumbers  bool
	heading      bool
	contextSep   bool
	width        int
	printedFiles int
	err          error

	pathColor  *color.Color
	lineColor  *color.Color
	matchColor *color.Color
	markColor  *color.Color
}

// New creates a new Printer with default settings
func New() *Printer {
	p := &Printer{
		output:       bufio.NewWriter(os.Stdout),
		useColors:    true,
		withFilename: true,
		lineNumbers:  true,
		pathColor:    color.New(color.FgBlue),
		lineColor:    color.New(color.FgGreen),
		matchColor:   color.New(color.FgRed, color.Bold),
		markColor:    color.New(color.FgMagenta),
	}
	return p.WithColors(true)
}

// WithOutput sets the output destination
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = bufio.NewWriter(w)
	return p
}

// WithColors enables or disables colored output, regardless of whether the
// output is a terminal.
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	for _, c := range []*color.Color{p.pathColor, p.lineColor, p.matchColor, p.markColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WithMode sets what is printed per file
func (p *Printer) WithMode(mode Mode) *Printer {
	p.mode = mode
	return p
}

// WithFilename prefixes each line with its path
func (p *Printer) WithFilename(enabled bool) *Printer {
	p.withFilename = enabled
	return p
}

// WithLineNumbers prefixes each line with its number
func (p *Printer) WithLineNumbers(enabled bool) *Printer {
	p.lineNumbers = enabled
	return p
}

// WithHeading prints the path once above a file's lines instead of on
// every line
func (p *Printer) WithHeading(enabled bool) *Printer {
	p.heading = enabled
	return p
}

// WithContextSeparator prints "--" between groups of lines that are not
// adjacent, and between files unless headings are on.
func (p *Printer) WithContextSeparator(enabled bool) *Printer {
	p.contextSep = enabled
	return p
}

// WithWidth truncates long lines around their first match to fit the
// given number of columns. 0 disables truncation.
func (p *Printer) WithWidth(columns int) *Printer {
	if columns >= 0 {
		p.width = columns
	}
	return p
}

// jsonRecord represents a record in JSON output
type jsonRecord struct {
	Type       string         `json:"type"`
	Path       string         `json:"path"`
	Line       int            `json:"line"`
	Offset     int64          `json:"offset"`
	Text       string         `json:"text"`
	Spans      []pattern.Span `json:"spans"`
	Submatches []string       `json:"submatches"`
}

// PrintFile outputs the records of one file. It returns the first write
// error, after which nothing more is written.
func (p *Printer) PrintFile(path string, records []scanner.Record) error {
	if p.err != nil || len(records) == 0 {
		return p.err
	}
	selected := 0
	for _, r := range records {
		if !r.IsContext() {
			selected++
		}
	}
	p.count.Add(int64(selected))

	switch p.mode {
	case ModeFiles:
		p.writeString(p.pathColor.Sprint(path))
		p.writeString("\n")
	case ModeCount:
		if p.withFilename {
			p.writeString(p.pathColor.Sprint(path))
			p.writeString(":")
		}
		p.writeString(strconv.Itoa(selected))
		p.writeString("\n")
	case ModeJSON:
		p.printJSON(records)
	default:
		p.printLines(path, records)
	}
	p.printedFiles++
	return p.err
}

func (p *Printer) printJSON(records []scanner.Record) {
	enc := json.NewEncoder(p.output)
	for _, r := range records {
		subs := make([]string, len(r.Spans))
		for i, s := range r.Spans {
			subs[i] = string(r.Text[s.Start:s.End])
		}
		kind := "match"
		if r.IsContext() {
			kind = "context"
		}
		if err := enc.Encode(jsonRecord{
			Type:       kind,
			Path:       r.Path,
			Line:       r.Line,
			Offset:     r.Offset,
			Text:       string(r.Text),
			Spans:      r.Spans,
			Submatches: subs,
		}); err != nil {
			p.err = fmt.Errorf("printer: encoding %s:%d: %w", r.Path, r.Line, err)
			return
		}
	}
}

func (p *Printer) printLines(path string, records []scanner.Record) {
	inline := p.withFilename && !p.heading
	if p.heading && p.withFilename {
		if p.printedFiles > 0 {
			p.writeString("\n")
		}
		p.writeString(p.pathColor.Sprint(path))
		p.writeString("\n")
	} else if p.contextSep && p.printedFiles > 0 {
		p.writeString(p.markColor.Sprint("--"))
		p.writeString("\n")
	}

	prev := 0
	for _, r := range records {
		if p.mode == ModeOnlyMatching && r.IsContext() {
			continue
		}
		if p.contextSep && prev > 0 && r.Line > prev+1 {
			p.writeString(p.markColor.Sprint("--"))
			p.writeString("\n")
		}
		prev = r.Line

		sep := separator(r.Context)
		prefix := ""
		if inline {
			prefix = p.pathColor.Sprint(path) + sep
		}
		if p.lineNumbers {
			prefix += p.lineColor.Sprint(r.Line) + sep
		}

		if p.mode == ModeOnlyMatching {
			for _, s := range r.Spans {
				p.writeString(prefix)
				p.writeString(p.matchColor.Sprint(string(r.Text[s.Start:s.End])))
				p.writeString("\n")
			}
			continue
		}

		p.writeString(prefix)
		p.writeLine(r.Text, r.Spans)
		p.writeString("\n")
	}
}

// separator follows the path and line number: ':' on selected lines, '-'
// on lines before them and '+' on lines after.
func separator(c scanner.Context) string {
	switch c {
	case scanner.ContextBefore:
		return "-"
	case scanner.ContextAfter:
		return "+"
	default:
		return ":"
	}
}

// writeLine writes text with its spans highlighted, cut down to the
// printer width around the first span.
func (p *Printer) writeLine(text []byte, spans []pattern.Span) {
	lo, hi := 0, len(text)
	if p.width > 0 && len(spans) > 0 {
		lo, hi = window(text, spans[0], p.width)
	}

	if lo > 0 {
		p.writeString(p.markColor.Sprint("[...] "))
	}
	pos := lo
	for _, s := range spans {
		start, end := max(s.Start, lo), min(s.End, hi)
		if start >= end {
			continue
		}
		p.write(text[pos:start])
		p.writeString(p.matchColor.Sprint(string(text[start:end])))
		pos = end
	}
	if pos < hi {
		p.write(text[pos:hi])
	}
	if hi < len(text) {
		p.writeString(p.markColor.Sprint(" [...]"))
	}
}

func (p *Printer) write(b []byte) {
	if p.err != nil {
		return
	}
	if _, err := p.output.Write(b); err != nil {
		p.err = fmt.Errorf("printer: %w", err)
	}
}

func (p *Printer) writeString(s string) {
	if p.err != nil {
		return
	}
	if _, err := p.output.WriteString(s); err != nil {
		p.err = fmt.Errorf("printer: %w", err)
	}
}

// Finalize flushes buffered output.
func (p *Printer) Finalize() error {
	if p.err != nil {
		return p.err
	}
	if err := p.output.Flush(); err != nil {
		p.err = fmt.Errorf("printer: %w", err)
	}
	return p.err
}

// GetCount returns the number of records printed
func (p *Printer) GetCount() int64 {
	return p.count.Load()
}
