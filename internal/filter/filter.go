// Package filter selects which candidate files are searched by glob and file type
package filter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// types maps a type name to the globs it selects. Unknown names are treated
// as a bare extension.
var types = map[string][]string{
	"c":        {"*.c", "*.h"},
	"cpp":      {"*.cc", "*.cpp", "*.cxx", "*.hh", "*.hpp", "*.hxx", "*.h"},
	"css":      {"*.css", "*.scss", "*.sass", "*.less"},
	"go":       {"*.go"},
	"html":     {"*.html", "*.htm"},
	"java":     {"*.java"},
	"js":       {"*.js", "*.mjs", "*.cjs", "*.jsx"},
	"json":     {"*.json"},
	"make":     {"Makefile", "makefile", "GNUmakefile", "*.mk"},
	"markdown": {"*.md", "*.markdown"},
	"md":       {"*.md", "*.markdown"},
	"py":       {"*.py", "*.pyi"},
	"rust":     {"*.rs"},
	"sh":       {"*.sh", "*.bash", "*.zsh"},
	"toml":     {"*.toml"},
	"ts":       {"*.ts", "*.tsx", "*.mts", "*.cts"},
	"txt":      {"*.txt"},
	"yaml":     {"*.yaml", "*.yml"},
}

// Types returns the known type names, sorted.
func Types() []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter decides whether a root-relative path is selected for searching.
// A nil Filter selects everything.
type Filter struct {
	globs *gitignore.GitIgnore
	types *gitignore.GitIgnore
}

// New builds a filter from --glob patterns (a leading '!' excludes) and
// --type names. It returns nil when nothing restricts the selection.
func New(globs, typeNames []string) (*Filter, error) {
	var f Filter

	var clean []string
	for _, g := range globs {
		if g = strings.TrimSpace(g); g != "" {
			clean = append(clean, g)
		}
	}
	if len(clean) > 0 {
		// An exclude-only list keeps everything else.
		if allNegated(clean) {
			clean = append([]string{"*"}, clean...)
		}
		f.globs = gitignore.CompileIgnoreLines(clean...)
	}

	var typeGlobs []string
	for _, name := range typeNames {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), ".")))
		if name == "" {
			continue
		}
		if strings.ContainsAny(name, "/*?[") {
			return nil, fmt.Errorf("filter: invalid file type %q", name)
		}
		if known, ok := types[name]; ok {
			typeGlobs = append(typeGlobs, known...)
		} else {
			typeGlobs = append(typeGlobs, "*."+name)
		}
	}
	if len(typeGlobs) > 0 {
		f.types = gitignore.CompileIgnoreLines(typeGlobs...)
	}

	if f.globs == nil && f.types == nil {
		return nil, nil
	}
	return &f, nil
}

// Allow reports whether the file at rel should be searched.
func (f *Filter) Allow(rel string) bool {
	if f == nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	if f.globs != nil && !f.globs.MatchesPath(rel) {
		return false
	}
	if f.types != nil && !f.types.MatchesPath(rel) {
		return false
	}
	return true
}

func allNegated(globs []string) bool {
	for _, g := range globs {
		if !strings.HasPrefix(g, "!") {
			return false
		}
	}
	return true
}
