package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

const maxRuleLine = 1 << 20

// RuleSet is the ordered list of patterns read from one directory's ignore
// file(s). Later patterns override earlier ones.
type RuleSet struct {
	Dir      string // absolute directory the patterns are relative to
	Depth    int
	Patterns []Pattern
	Sources  []string
}

// Len returns the number of patterns in the set.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Patterns)
}

// Match returns ok=false if no pattern applies to rel, otherwise the verdict
// of the last applying pattern.
func (rs *RuleSet) Match(rel string, isDir bool) (ignored, ok bool) {
	if rs == nil {
		return false, false
	}
	for i := len(rs.Patterns) - 1; i >= 0; i-- {
		if v, applies := rs.Patterns[i].Match(rel, isDir); applies {
			return v, true
		}
	}
	return false, false
}

// matchPath is Match extended to the ancestors of rel inside the set's
// directory: a rule excluding "build/" also speaks for "build/a.txt" when no
// rule names the file itself. The nearest ancestor with a verdict wins.
func (rs *RuleSet) matchPath(rel string, isDir bool) (ignored, ok bool) {
	if v, applies := rs.Match(rel, isDir); applies {
		return v, true
	}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if v, applies := rs.Match(dir, true); applies {
			return v, true
		}
	}
	return false, false
}

func (rs *RuleSet) append(other *RuleSet) {
	if other == nil {
		return
	}
	rs.Patterns = append(rs.Patterns, other.Patterns...)
	rs.Sources = append(rs.Sources, other.Sources...)
}

// Parse reads ignore rules from r. It only fails when r cannot be read;
// malformed globs are kept as literal patterns.
func Parse(r io.Reader, dir string, depth int, source string) (*RuleSet, error) {
	rs := &RuleSet{Dir: dir, Depth: depth}
	if source != "" {
		rs.Sources = []string{source}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxRuleLine)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if p, ok := parseLine(line, lineNo, depth, source); ok {
			rs.Patterns = append(rs.Patterns, p)
		}
	}
	if err := sc.Err(); err != nil {
		return rs, fmt.Errorf("ignore: reading %s: %w", source, err)
	}
	return rs, nil
}

// ParseLines builds a rule set from in-memory lines, e.g. --exclude values.
func ParseLines(lines []string, dir string, depth int, source string) *RuleSet {
	rs := &RuleSet{Dir: dir, Depth: depth, Sources: []string{source}}
	for i, line := range lines {
		if p, ok := parseLine(line, i+1, depth, source); ok {
			rs.Patterns = append(rs.Patterns, p)
		}
	}
	return rs
}

// ParseFile reads the ignore file at file, with patterns relative to dir.
// A missing file yields an empty set and no error.
func ParseFile(file, dir string, depth int) (*RuleSet, error) {
	f, err := os.Open(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &RuleSet{Dir: dir, Depth: depth}, nil
		}
		return &RuleSet{Dir: dir, Depth: depth}, fmt.Errorf("ignore: opening %s: %w", file, err)
	}
	defer f.Close()
	return Parse(f, dir, depth, file)
}
