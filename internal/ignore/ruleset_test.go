package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	text := "# build output\n\n*.log\n   \n!keep.log\nbuild/\n/vendor\n"

	rs, err := Parse(strings.NewReader(text), "/repo", 0, "/repo/.gitignore")
	require.NoError(t, err)
	require.Equal(t, 4, rs.Len())

	assert.Equal(t, "*.log", rs.Patterns[0].Glob)
	assert.Equal(t, 3, rs.Patterns[0].Line)

	assert.True(t, rs.Patterns[1].Negated)
	assert.Equal(t, "keep.log", rs.Patterns[1].Glob)

	assert.True(t, rs.Patterns[2].DirOnly)
	assert.Equal(t, "build", rs.Patterns[2].Glob)

	assert.True(t, rs.Patterns[3].Anchored)
	assert.Equal(t, "vendor", rs.Patterns[3].Glob)
	assert.Equal(t, "/repo/.gitignore", rs.Patterns[3].Source)
}

func TestParseHandlesCRLFAndTrailingSpace(t *testing.T) {
	rs, err := Parse(strings.NewReader("*.tmp  \r\nnotes.txt\r\n"), "/repo", 0, "")
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())
	assert.Equal(t, "*.tmp", rs.Patterns[0].Glob)
	assert.Equal(t, "notes.txt", rs.Patterns[1].Glob)
}

func TestRuleSetMatch(t *testing.T) {
	rs := ParseLines([]string{
		"*.log",
		"!important.log",
		"build/",
		"/root-only.txt",
		"docs/**/draft.md",
	}, "/repo", 0, "test")

	tests := []struct {
		name        string
		rel         string
		isDir       bool
		wantIgnored bool
		wantOK      bool
	}{
		{"glob matches basename", "app.log", false, true, true},
		{"glob matches nested basename", "sub/app.log", false, true, true},
		{"later negation wins", "important.log", false, false, true},
		{"dir-only matches directory", "build", true, true, true},
		{"dir-only skips file", "build", false, false, false},
		{"anchored matches at root", "root-only.txt", false, true, true},
		{"anchored skips nested", "sub/root-only.txt", false, false, false},
		{"double star spans levels", "docs/a/b/draft.md", false, true, true},
		{"no rule applies", "main.go", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ignored, ok := rs.Match(tt.rel, tt.isDir)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIgnored, ignored)
		})
	}
}

func TestMalformedGlobMatchesLiterally(t *testing.T) {
	tests := []struct {
		line  string
		rel   string
		isDir bool
		want  bool
	}{
		{"[abc", "[abc", false, true},
		{"[abc", "sub/[abc", false, true},
		{"[abc", "a", false, false},
		{"a[", "a[", false, true},
		{"[]", "[]", false, true},
		{"x[!", "x[!", false, true},
		{`foo\`, `foo\`, false, true},
		{"/dir/[x", "dir/[x", false, true},
		{"/dir/[x", "other/dir/[x", false, false},
		{"out[/", "out[", true, true},
		{"out[/", "out[", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.line+" "+tt.rel, func(t *testing.T) {
			rs := ParseLines([]string{tt.line}, "/repo", 0, "test")
			require.Equal(t, 1, rs.Len())
			ignored, ok := rs.Match(tt.rel, tt.isDir)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.want, ignored)
		})
	}
}

func TestWellFormed(t *testing.T) {
	for glob, want := range map[string]bool{
		"*.go":     true,
		"[abc]":    true,
		"[!a]x":    true,
		"[]a]":     true,
		`\[lit`:   true,
		"**/a":     true,
		"[abc":     false,
		"a[":       false,
		"[]":       false,
		"x[!":      false,
		`foo\`:    false,
		`[a\]`:    false,
		"ok/[a]/[": false,
	} {
		assert.Equal(t, want, wellFormed(glob), glob)
	}
}

func TestRuleSetLastMatchWins(t *testing.T) {
	rs := ParseLines([]string{"!a.txt", "*.txt"}, "/repo", 0, "test")
	ignored, ok := rs.Match("a.txt", false)
	assert.True(t, ok)
	assert.True(t, ignored, "the later *.txt overrides the earlier negation")

	rs = ParseLines([]string{"*.txt", "!a.txt"}, "/repo", 0, "test")
	ignored, ok = rs.Match("a.txt", false)
	assert.True(t, ok)
	assert.False(t, ignored)
}

func TestRuleSetMatchPathUsesAncestors(t *testing.T) {
	rs := ParseLines([]string{"build/"}, "/repo", 0, "test")

	ignored, ok := rs.matchPath("build/out/a.o", false)
	assert.True(t, ok)
	assert.True(t, ignored)

	_, ok = rs.matchPath("src/a.go", false)
	assert.False(t, ok)
}

func TestNilRuleSetMatchesNothing(t *testing.T) {
	var rs *RuleSet
	_, ok := rs.Match("anything", false)
	assert.False(t, ok)
	assert.Equal(t, 0, rs.Len())
}

func TestParseFileMissingIsEmpty(t *testing.T) {
	dir := t.TempDir()
	rs, err := ParseFile(filepath.Join(dir, ".gitignore"), dir, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
	assert.Equal(t, dir, rs.Dir)
	assert.Equal(t, 2, rs.Depth)
}

func TestParseFileUnreadableIsError(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the rule file cannot be read as text.
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".gitignore"), 0o755))

	rs, err := ParseFile(filepath.Join(dir, ".gitignore"), dir, 0)
	require.Error(t, err)
	assert.Equal(t, 0, rs.Len())
}

func TestTrimTrailingSpaceKeepsEscaped(t *testing.T) {
	assert.Equal(t, "a", trimTrailingSpace("a  \t"))
	assert.Equal(t, `a\ `, trimTrailingSpace(`a\ `))
	assert.Equal(t, "", trimTrailingSpace("   "))
}
