package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tgrep/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// tree creates a small project with an ignored file and a binary file.
func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n")
	writeFile(t, filepath.Join(root, "a.txt"), "one socks\ntwo\nthree socks\n")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "no match here\n")
	writeFile(t, filepath.Join(root, "sub", "c.log"), "socks\n")
	writeFile(t, filepath.Join(root, "d.bin"), "socks\x00\x01")
	return root
}

func run(t *testing.T, cfg *config.Config) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := New(cfg, &stdout, &stderr).Run(context.Background())
	return code, stdout.String(), stderr.String()
}

func baseConfig(pattern string, paths ...string) *config.Config {
	cfg := config.Default()
	cfg.Pattern = pattern
	cfg.Paths = paths
	cfg.Threads = 2
	cfg.Group = true
	return cfg
}

func TestRunExitCodes(t *testing.T) {
	root := tree(t)

	tests := []struct {
		name    string
		pattern string
		paths   []string
		want    int
	}{
		{"matches", "socks", []string{root}, ExitMatch},
		{"no matches", "nothing-like-this", []string{root}, ExitNoMatch},
		{"invalid pattern", "a(", []string{root}, ExitError},
		{"invalid root", "socks", []string{filepath.Join(root, "missing")}, ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := run(t, baseConfig(tt.pattern, tt.paths...))
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRunPrintsMatchingLines(t *testing.T) {
	root := tree(t)
	code, stdout, _ := run(t, baseConfig("socks", root))
	require.Equal(t, ExitMatch, code)

	a := filepath.Join(root, "a.txt")
	assert.Equal(t, a+":1:one socks\n"+a+":3:three socks\n", stdout)
}

func TestRunNoIgnoreSearchesIgnoredFiles(t *testing.T) {
	root := tree(t)
	cfg := baseConfig("socks", root)
	cfg.NoIgnore = true
	cfg.FilesWithMatches = true

	code, stdout, _ := run(t, cfg)
	require.Equal(t, ExitMatch, code)
	assert.Contains(t, stdout, filepath.Join(root, "sub", "c.log"))
	assert.NotContains(t, stdout, "d.bin", "binary files are skipped")
}

func TestRunJSON(t *testing.T) {
	root := tree(t)
	cfg := baseConfig("socks", root)
	cfg.JSON = true

	code, stdout, _ := run(t, cfg)
	require.Equal(t, ExitMatch, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, float64(1), rec["line"])
	assert.Equal(t, "one socks", rec["text"])
}

func TestRunReportsStatsAndItems(t *testing.T) {
	root := tree(t)
	cfg := baseConfig("socks", root)
	cfg.Stats = true
	cfg.ShowSkipped = true
	cfg.ShowIgnored = true
	cfg.Color = config.ColorNever

	code, _, stderr := run(t, cfg)
	require.Equal(t, ExitMatch, code)

	assert.Contains(t, stderr, "Skipped FILE: "+filepath.Join(root, "d.bin")+" [Skipped (Binary Content)]")
	assert.Contains(t, stderr, "Ignored FILE: "+filepath.Join(root, "sub", "c.log"))
	assert.Contains(t, stderr, "1 matched (2 lines)")
}

func TestRunCancelled(t *testing.T) {
	root := tree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := New(baseConfig("socks", root), &stdout, &stderr).Run(ctx)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr.String(), "interrupted")
}

func TestRunPrintsContext(t *testing.T) {
	root := tree(t)
	cfg := baseConfig("two", filepath.Join(root, "a.txt"))
	cfg.Before = 1
	cfg.After = 1

	code, stdout, _ := run(t, cfg)
	require.Equal(t, ExitMatch, code)

	a := filepath.Join(root, "a.txt")
	assert.Equal(t, a+"-1-one socks\n"+a+":2:two\n"+a+"+3+three socks\n", stdout)
}

func TestRunSearchesStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	a := New(baseConfig("socks", "-"), &stdout, &stderr)
	a.Input = strings.NewReader("shoes\nred socks\n")

	code := a.Run(context.Background())
	require.Equal(t, ExitMatch, code, stderr.String())
	assert.Equal(t, "<stdin>:2:red socks\n", stdout.String())

	stdout.Reset()
	a = New(baseConfig("socks", "-"), &stdout, &stderr)
	a.Input = strings.NewReader("socks\x00\n")
	assert.Equal(t, ExitNoMatch, a.Run(context.Background()), "binary input is skipped")
	assert.Empty(t, stdout.String())
}
