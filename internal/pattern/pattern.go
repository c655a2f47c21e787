// Package pattern compiles the search expression once so that every worker
// can share it read-only.
package pattern

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrInvalid is wrapped by every compile error.
var ErrInvalid = errors.New("invalid pattern")

// Engine selects the regular-expression implementation.
type Engine string

const (
	// EngineRE2 is the linear-time standard library engine.
	EngineRE2 Engine = "re2"
	// EngineBacktrack supports lookaround and backreferences at the cost of
	// worst-case exponential matching.
	EngineBacktrack Engine = "backtrack"
)

// ParseEngine validates an engine name; the empty string means RE2.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EngineRE2:
		return EngineRE2, nil
	case EngineBacktrack, "pcre":
		return EngineBacktrack, nil
	default:
		return "", fmt.Errorf("%w: unknown engine %q", ErrInvalid, s)
	}
}

// Options controls how an expression is compiled.
type Options struct {
	IgnoreCase bool
	// SmartCase ignores case unless the expression contains an upper-case letter.
	SmartCase bool
	Literal   bool
	Word      bool
	Invert    bool
	Engine    Engine
}

// Span is a half-open byte range [Start, End) within a line.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// matcher is implemented by each engine.
type matcher interface {
	find(line []byte) []Span
	// anywhere reports whether some line of buf could match. False
	// positives are allowed, false negatives are not.
	anywhere(buf []byte) bool
	canPrefilter() bool
}

// Pattern is an immutable compiled search expression, safe for concurrent use.
type Pattern struct {
	expr string
	opts Options
	m    matcher
}

// Compile builds a Pattern from expr.
func Compile(expr string, opts Options) (*Pattern, error) {
	if opts.Engine == "" {
		opts.Engine = EngineRE2
	}
	if opts.SmartCase && !opts.IgnoreCase && !hasUpper(expr) {
		opts.IgnoreCase = true
	}

	p := &Pattern{expr: expr, opts: opts}
	var err error
	switch {
	case opts.Literal && !opts.IgnoreCase && !opts.Word:
		p.m = literal{needle: []byte(expr)}
	case opts.Engine == EngineBacktrack:
		p.m, err = compileBacktrack(expr, opts)
	default:
		p.m, err = compileRE2(expr, opts)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// String returns the expression as given.
func (p *Pattern) String() string {
	return p.expr
}

// Options returns the effective options, after smart case was resolved.
func (p *Pattern) Options() Options {
	return p.opts
}

// Inverted reports whether lines without a match are the ones selected.
func (p *Pattern) Inverted() bool {
	return p.opts.Invert
}

// Find returns the non-overlapping match spans in line, in order.
func (p *Pattern) Find(line []byte) []Span {
	return p.m.find(line)
}

// Select returns the spans to record for line and whether the line is
// selected. Inverted patterns select lines without any match and report a
// single whole-line span.
func (p *Pattern) Select(line []byte) ([]Span, bool) {
	spans := p.m.find(line)
	if p.opts.Invert {
		if len(spans) > 0 {
			return nil, false
		}
		return []Span{{Start: 0, End: len(line)}}, true
	}
	return spans, len(spans) > 0
}

// MayMatch is a whole-buffer prefilter: false means no line of buf is
// selected. It is conservative and returns true when unsure.
func (p *Pattern) MayMatch(buf []byte) bool {
	if p.opts.Invert || !p.m.canPrefilter() {
		return true
	}
	// Line-anchored expressions cannot be checked across "\r\n" endings.
	if bytes.IndexByte(buf, '\r') >= 0 {
		return true
	}
	return p.m.anywhere(buf)
}

type literal struct {
	needle []byte
}

func (l literal) find(line []byte) []Span {
	if len(l.needle) == 0 {
		return []Span{{0, 0}}
	}
	var spans []Span
	for off := 0; off <= len(line)-len(l.needle); {
		i := bytes.Index(line[off:], l.needle)
		if i < 0 {
			break
		}
		start := off + i
		spans = append(spans, Span{Start: start, End: start + len(l.needle)})
		off = start + len(l.needle)
	}
	return spans
}

func (l literal) anywhere(buf []byte) bool {
	return bytes.Contains(buf, l.needle)
}

func (literal) canPrefilter() bool { return true }

// flagGroup finds inline flag groups such as (?-m) or (?s:...).
var flagGroup = regexp.MustCompile(`\(\?[imsU-]`)

type re2 struct {
	line      *regexp.Regexp
	buf       *regexp.Regexp
	prefilter bool
}

func compileRE2(expr string, opts Options) (matcher, error) {
	body := expr
	if opts.Literal {
		body = regexp.QuoteMeta(expr)
	}
	if opts.Word {
		body = `\b(?:` + body + `)\b`
	}
	flags := ""
	if opts.IgnoreCase {
		flags = "i"
	}

	src := body
	if flags != "" {
		src = "(?" + flags + ")" + body
	}
	line, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	m := &re2{line: line}
	// \A and \z mean line boundaries here but buffer boundaries in the
	// prefilter, and an inline flag group can turn the prefilter's (?m) off.
	lineBound := strings.Contains(expr, `\A`) || strings.Contains(expr, `\z`)
	if opts.Literal || (!lineBound && !flagGroup.MatchString(expr)) {
		if buf, err := regexp.Compile("(?m" + flags + ")" + body); err == nil {
			m.buf = buf
			m.prefilter = true
		}
	}
	return m, nil
}

func (r *re2) find(line []byte) []Span {
	idx := r.line.FindAllIndex(line, -1)
	if len(idx) == 0 {
		return nil
	}
	spans := make([]Span, len(idx))
	for i, loc := range idx {
		spans[i] = Span{Start: loc[0], End: loc[1]}
	}
	return spans
}

func (r *re2) anywhere(buf []byte) bool {
	return r.buf.Match(buf)
}

func (r *re2) canPrefilter() bool { return r.prefilter }

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
