package ignore

import (
	"path"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
)

// Pattern is a single rule from an ignore file. It is immutable once parsed.
type Pattern struct {
	Raw      string // line as written in the file
	Glob     string // pattern text without '!', the anchoring '/' and the trailing '/'
	Negated  bool
	DirOnly  bool
	Anchored bool
	Depth    int    // directory level of the file the rule came from
	Source   string // file the rule came from
	Line     int    // 1-based line in Source

	eval func(rel string, isDir bool) (ignored, ok bool)
}

// Match returns ok=false when the pattern does not apply to rel, otherwise
// whether it ignores (true) or re-includes (false) the path. rel is slash
// separated and relative to the directory of the rule file.
func (p *Pattern) Match(rel string, isDir bool) (ignored, ok bool) {
	if p.eval == nil {
		return false, false
	}
	return p.eval(rel, isDir)
}

func (p Pattern) String() string {
	return p.Raw
}

// parseLine turns one ignore-file line into a Pattern. Blank lines and
// comments report ok=false.
func parseLine(line string, lineNo, depth int, source string) (Pattern, bool) {
	line = trimTrailingSpace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, "#") {
		return Pattern{}, false
	}

	p := Pattern{Raw: line, Depth: depth, Source: source, Line: lineNo}
	body := line
	switch {
	case strings.HasPrefix(body, "!"):
		p.Negated = true
		body = body[1:]
	case strings.HasPrefix(body, `\!`), strings.HasPrefix(body, `\#`):
		body = body[1:]
	}
	if strings.HasSuffix(body, "/") {
		p.DirOnly = true
		body = strings.TrimRight(body, "/")
	}
	if strings.Contains(body, "/") {
		p.Anchored = true
	}
	body = strings.TrimPrefix(body, "/")
	if body == "" {
		return Pattern{}, false
	}
	p.Glob = body

	match := compileGlob(line, p)
	negated := p.Negated
	p.eval = func(rel string, isDir bool) (bool, bool) {
		if !match(rel, isDir) {
			return false, false
		}
		return !negated, true
	}
	return p, true
}

// compileGlob hands the line to the gitignore engine. Malformed globs and
// lines the engine rejects are matched literally instead of failing the
// whole file.
func compileGlob(line string, p Pattern) func(rel string, isDir bool) bool {
	if !wellFormed(p.Glob) {
		return literalMatch(p)
	}
	failed := false
	gi := gitignore.New(strings.NewReader(line+"\n"), "/", func(gitignore.Error) bool {
		failed = true
		return true
	})
	if failed || gi == nil {
		return literalMatch(p)
	}
	return func(rel string, isDir bool) bool {
		return gi.Relative(rel, isDir) != nil
	}
}

// wellFormed reports whether every bracket expression in glob is closed and
// no backslash is left dangling at the end.
func wellFormed(glob string) bool {
	for i := 0; i < len(glob); i++ {
		switch glob[i] {
		case '\\':
			if i+1 == len(glob) {
				return false
			}
			i++
		case '[':
			j := i + 1
			if j < len(glob) && (glob[j] == '!' || glob[j] == '^') {
				j++
			}
			// A ']' right after the opening bracket is a member, not the end.
			if j < len(glob) && glob[j] == ']' {
				j++
			}
			for j < len(glob) && glob[j] != ']' {
				if glob[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(glob) {
				return false
			}
			i = j
		}
	}
	return true
}

func literalMatch(p Pattern) func(rel string, isDir bool) bool {
	glob, dirOnly, anchored := p.Glob, p.DirOnly, p.Anchored
	return func(rel string, isDir bool) bool {
		if dirOnly && !isDir {
			return false
		}
		if anchored {
			return rel == glob
		}
		return path.Base(rel) == glob
	}
}

// trimTrailingSpace drops trailing blanks unless they are escaped with a backslash.
func trimTrailingSpace(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		if last != ' ' && last != '\t' {
			break
		}
		if len(s) >= 2 && s[len(s)-2] == '\\' {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
