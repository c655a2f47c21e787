package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5/osfs"
	gogitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/bethropolis/tgrep/internal/logger"
)

// Depths used for rule sets that sit above the search root.
const (
	globalDepth  = -1 << 20
	excludeDepth = globalDepth + 1
)

// RepoTop walks up from dir, inclusive, to the first directory containing a
// .git entry.
func RepoTop(dir string) (string, bool) {
	cur := filepath.Clean(dir)
	for {
		if _, err := os.Lstat(filepath.Join(cur, VCSDir)); err == nil {
			return cur, true
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", false
		}
		cur = parent
	}
}

// LoadAncestors parses the ignore files of every directory above root up to
// the top of the enclosing repository, outermost first. Nothing is loaded
// when root is itself the repository top or is not inside a repository.
func LoadAncestors(root string, names []string, log logger.Logger) []*RuleSet {
	if log == nil {
		log = logger.Nop{}
	}
	top, ok := RepoTop(root)
	if !ok || top == root {
		return nil
	}

	var sets []*RuleSet
	depth := -1
	for cur := filepath.Dir(root); ; cur = filepath.Dir(cur) {
		rs := &RuleSet{Dir: cur, Depth: depth}
		for _, name := range names {
			loaded, err := ParseFile(filepath.Join(cur, name), cur, depth)
			if err != nil {
				log.Warn("skipping parent rules in %s: %v", cur, err)
				continue
			}
			rs.append(loaded)
		}
		if rs.Len() > 0 {
			log.Debug("found %d parent rules in %s", rs.Len(), cur)
			sets = append(sets, rs)
		}
		if cur == top || filepath.Dir(cur) == cur {
			break
		}
		depth--
	}

	for i, j := 0, len(sets)-1; i < j; i, j = i+1, j-1 {
		sets[i], sets[j] = sets[j], sets[i]
	}
	return sets
}

// LoadRepoExcludes parses .git/info/exclude of the repository at top.
func LoadRepoExcludes(top string) (*RuleSet, error) {
	file := filepath.Join(top, VCSDir, "info", "exclude")
	rs, err := ParseFile(file, top, excludeDepth)
	if err != nil {
		return rs, fmt.Errorf("ignore: repository excludes: %w", err)
	}
	return rs, nil
}

// LoadGlobalExcludes returns the user's global exclude rules relative to dir.
// core.excludesFile from ~/.gitconfig is used when set, otherwise git's
// default location $XDG_CONFIG_HOME/git/ignore.
func LoadGlobalExcludes(dir string) (*RuleSet, error) {
	patterns, err := gogitignore.LoadGlobalPatterns(osfs.New("/"))
	if err != nil {
		return nil, fmt.Errorf("ignore: reading core.excludesFile: %w", err)
	}

	if len(patterns) == 0 {
		file := filepath.Join(xdg.ConfigHome, "git", "ignore")
		return ParseFile(file, dir, globalDepth)
	}

	const source = "core.excludesFile"
	rs := &RuleSet{Dir: dir, Depth: globalDepth, Sources: []string{source}}
	for i, gp := range patterns {
		gp := gp
		rs.Patterns = append(rs.Patterns, Pattern{
			Raw:    fmt.Sprintf("%s#%d", source, i+1),
			Depth:  globalDepth,
			Source: source,
			Line:   i + 1,
			eval: func(rel string, isDir bool) (bool, bool) {
				switch gp.Match(strings.Split(rel, "/"), isDir) {
				case gogitignore.Exclude:
					return true, true
				case gogitignore.Include:
					return false, true
				default:
					return false, false
				}
			},
		})
	}
	return rs, nil
}
