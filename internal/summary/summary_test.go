package summary

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tgrep/internal/scanner"
	"github.com/bethropolis/tgrep/internal/scheduler"
	"github.com/bethropolis/tgrep/internal/walker"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func entry(path string, kind walker.Kind, reason walker.SkippedReason) walker.Entry {
	return walker.Entry{Candidate: walker.Candidate{Path: path}, Kind: kind, Reason: reason}
}

func TestAddCountsEveryKind(t *testing.T) {
	s := New()
	s.Add(scheduler.Result{Entry: entry("z.txt", walker.KindFile, ""), Outcome: scanner.Outcome{
		Kind:    scanner.Matched,
		Records: []scanner.Record{{Line: 1}, {Line: 4}},
	}})
	s.Add(scheduler.Result{Entry: entry("a.txt", walker.KindFile, ""), Outcome: scanner.Outcome{Kind: scanner.NoMatch}})
	s.Add(scheduler.Result{Entry: entry("img.png", walker.KindFile, ""), Outcome: scanner.Outcome{Kind: scanner.Skipped, Reason: scanner.ReasonBinary}})
	s.Add(scheduler.Result{Entry: entry("io.txt", walker.KindFile, ""), Outcome: scanner.Outcome{Kind: scanner.Skipped, Reason: scanner.ReasonUnreadable, Err: errors.New("EIO")}})
	s.Add(scheduler.Result{Entry: entry("app.log", walker.KindIgnored, walker.ReasonIgnoredRule)})
	s.Add(scheduler.Result{Entry: entry("README.md", walker.KindFiltered, walker.ReasonFilteredGlob)})
	locked := entry("locked", walker.KindSkipped, walker.ReasonSkippedPermError)
	locked.IsDir = true
	s.Add(scheduler.Result{Entry: locked})

	assert.Equal(t, int64(6), s.Files)
	assert.Equal(t, int64(2), s.Scanned)
	assert.Equal(t, int64(1), s.Matched)
	assert.Equal(t, int64(2), s.MatchLines)
	assert.Equal(t, int64(3), s.Skipped)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(1), s.Ignored)
	assert.Equal(t, int64(1), s.Filtered)
	assert.True(t, s.HasMatches())

	skipped := s.SkippedItems()
	require.Len(t, skipped, 3)
	assert.Equal(t, "img.png", skipped[0].Path)
	assert.Equal(t, ReasonBinary, skipped[0].Reason)
	assert.Equal(t, "io.txt", skipped[1].Path)
	assert.Equal(t, "EIO", skipped[1].Err)
	assert.Equal(t, "locked", skipped[2].Path)
	assert.True(t, skipped[2].IsDir)

	ignored := s.IgnoredItems()
	require.Len(t, ignored, 1)
	assert.Equal(t, walker.ReasonIgnoredRule, ignored[0].Reason)
}

func TestDisplay(t *testing.T) {
	s := New()
	s.Add(scheduler.Result{Entry: entry("b.bin", walker.KindFile, ""), Outcome: scanner.Outcome{Kind: scanner.Skipped, Reason: scanner.ReasonBinary}})
	s.Finish(1500*time.Millisecond, nil)

	log := &recordingLogger{}
	DisplayResults(log, s, false)
	require.Len(t, log.lines, 2)
	assert.Contains(t, log.lines[0], "1 skipped")
	assert.Contains(t, log.lines[1], "1.5s")

	var out bytes.Buffer
	DisplayItems(log, "Skipped Items", "Skipped", s.SkippedItems(), &out, false)
	assert.Equal(t, "Skipped FILE: b.bin [Skipped (Binary Content)]\n", out.String())

	quiet := &recordingLogger{}
	DisplayResults(quiet, s, true)
	assert.Empty(t, quiet.lines)
}
