//go:build unix

package scanner

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tgrep/internal/pattern"
	"github.com/bethropolis/tgrep/internal/walker"
)

func TestSpecialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fifo")
	require.NoError(t, syscall.Mkfifo(path, 0o644))
	info, err := os.Lstat(path)
	require.NoError(t, err)

	s := New(mustCompile(t, "a", pattern.Options{}))
	out := s.Scan(walker.Candidate{Path: path, Abs: path, Info: info})
	assert.Equal(t, Skipped, out.Kind)
	assert.Equal(t, ReasonSpecial, out.Reason)
}

func TestReadErrorAfterOpenIsSkipped(t *testing.T) {
	// A directory opens fine on unix but fails on read.
	dir := t.TempDir()
	info := candidate(t, "abc\n").Info

	s := New(mustCompile(t, "a", pattern.Options{}))
	out := s.Scan(walker.Candidate{Path: dir, Abs: dir, Info: info})
	assert.Equal(t, Skipped, out.Kind)
	assert.Equal(t, ReasonUnreadable, out.Reason)
	assert.Error(t, out.Err)
}
