package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tgrep/internal/pattern"
	"github.com/bethropolis/tgrep/internal/walker"
)

func candidate(t *testing.T, content string) walker.Candidate {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	info, err := os.Lstat(path)
	require.NoError(t, err)
	return walker.Candidate{Path: path, Abs: path, Rel: "file.txt", Info: info}
}

func mustCompile(t *testing.T, expr string, opts pattern.Options) *pattern.Pattern {
	t.Helper()
	p, err := pattern.Compile(expr, opts)
	require.NoError(t, err)
	return p
}

func TestZeroByteFileIsNoMatch(t *testing.T) {
	s := New(mustCompile(t, "", pattern.Options{Literal: true}))
	out := s.Scan(candidate(t, ""))
	assert.Equal(t, NoMatch, out.Kind)
	assert.NoError(t, out.Err)
}

func TestNulByteIsBinaryEvenWithMatch(t *testing.T) {
	s := New(mustCompile(t, "socks", pattern.Options{}))
	out := s.Scan(candidate(t, "socks\x00socks\n"))
	assert.Equal(t, Skipped, out.Kind)
	assert.Equal(t, ReasonBinary, out.Reason)
	assert.Empty(t, out.Records)
}

func TestRecords(t *testing.T) {
	s := New(mustCompile(t, "o+", pattern.Options{}))
	out := s.Scan(candidate(t, "foo boo\nbar\r\nzoo"))

	require.Equal(t, Matched, out.Kind)
	require.Len(t, out.Records, 2)

	first := out.Records[0]
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, int64(0), first.Offset)
	assert.Equal(t, "foo boo", string(first.Text))
	assert.Equal(t, []pattern.Span{{Start: 1, End: 3}, {Start: 5, End: 7}}, first.Spans)

	last := out.Records[1]
	assert.Equal(t, 3, last.Line)
	assert.Equal(t, int64(13), last.Offset)
	assert.Equal(t, "zoo", string(last.Text))
}

func TestCRLFNotPartOfLine(t *testing.T) {
	s := New(mustCompile(t, "end$", pattern.Options{}))
	out := s.Scan(candidate(t, "the end\r\nnot the end.\r\n"))
	require.Equal(t, Matched, out.Kind)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "the end", string(out.Records[0].Text))
}

func TestInvertSelectsNonMatchingLines(t *testing.T) {
	s := New(mustCompile(t, "x", pattern.Options{Invert: true}))
	out := s.Scan(candidate(t, "x1\nkeep\n\nx2\n"))
	require.Equal(t, Matched, out.Kind)
	require.Len(t, out.Records, 2)
	assert.Equal(t, 2, out.Records[0].Line)
	assert.Equal(t, []pattern.Span{{Start: 0, End: 4}}, out.Records[0].Spans)
	assert.Equal(t, 3, out.Records[1].Line)
	assert.Equal(t, "", string(out.Records[1].Text))
}

func TestMaxCount(t *testing.T) {
	s := New(mustCompile(t, "a", pattern.Options{}), WithMaxCount(2))
	out := s.Scan(candidate(t, "a\na\na\n"))
	assert.Len(t, out.Records, 2)
}

func TestTooLarge(t *testing.T) {
	s := New(mustCompile(t, "a", pattern.Options{}), WithMaxFileSize(3))
	out := s.Scan(candidate(t, "aaaa"))
	assert.Equal(t, Skipped, out.Kind)
	assert.Equal(t, ReasonTooLarge, out.Reason)
}

func TestVanishedFileIsUnreadable(t *testing.T) {
	c := candidate(t, "abc\n")
	require.NoError(t, os.Remove(c.Abs))

	s := New(mustCompile(t, "a", pattern.Options{}))
	out := s.Scan(c)
	assert.Equal(t, Skipped, out.Kind)
	assert.Equal(t, ReasonUnreadable, out.Reason)
	assert.Error(t, out.Err)
}

func TestLargeFileMappedAndRead(t *testing.T) {
	var b strings.Builder
	for b.Len() < 3*sampleSize {
		b.WriteString("filler line of text\n")
	}
	b.WriteString("the needle is here\n")
	content := b.String()

	for _, mmap := range []bool{true, false} {
		s := New(mustCompile(t, "needle", pattern.Options{}), WithMmap(mmap))
		out := s.Scan(candidate(t, content))
		require.Equal(t, Matched, out.Kind, "mmap=%v", mmap)
		require.Len(t, out.Records, 1)
		assert.Equal(t, "the needle is here", string(out.Records[0].Text))
		assert.Equal(t, int64(len(content)-len("the needle is here\n")), out.Records[0].Offset)
	}
}

func TestPrefilterRejectsWholeFile(t *testing.T) {
	s := New(mustCompile(t, "absent", pattern.Options{}))
	out := s.Scan(candidate(t, "nothing to see\nhere\n"))
	assert.Equal(t, NoMatch, out.Kind)
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name   string
		sample []byte
		whole  bool
		want   bool
	}{
		{"plain text", []byte("hello\n"), true, false},
		{"nul byte", []byte("he\x00llo"), false, true},
		{"invalid utf8", []byte{'a', 0xff, 'b'}, false, true},
		{"multibyte text", []byte("héllo"), true, false},
		{"rune cut at sample end", []byte("hé")[:2], false, false},
		{"rune cut in whole file", []byte("hé")[:2], true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBinary(tt.sample, tt.whole))
		})
	}
}

type lines []Record

func (l lines) summary() []string {
	out := make([]string, len(l))
	for i, r := range l {
		mark := ":"
		switch r.Context {
		case ContextBefore:
			mark = "-"
		case ContextAfter:
			mark = "+"
		}
		out[i] = strconv.Itoa(r.Line) + mark + string(r.Text)
	}
	return out
}

func TestContextLines(t *testing.T) {
	content := "a\nb\nhit1\nc\nd\ne\nf\nhit2\nhit3\ng\n"
	tests := []struct {
		name          string
		before, after int
		want          []string
	}{
		{"before", 2, 0, []string{"1-a", "2-b", "3:hit1", "6-e", "7-f", "8:hit2", "9:hit3"}},
		{"after", 0, 1, []string{"3:hit1", "4+c", "8:hit2", "9:hit3", "10+g"}},
		{"overlap", 3, 2, []string{"1-a", "2-b", "3:hit1", "4+c", "5+d", "6-e", "7-f", "8:hit2", "9:hit3", "10+g"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(mustCompile(t, "hit", pattern.Options{}), WithContext(tt.before, tt.after))
			out := s.Scan(candidate(t, content))
			require.Equal(t, Matched, out.Kind)
			assert.Equal(t, tt.want, lines(out.Records).summary())
			assert.Equal(t, 3, out.Selected())
		})
	}
}

func TestContextRecordsHaveNoSpans(t *testing.T) {
	s := New(mustCompile(t, "x", pattern.Options{}), WithContext(1, 1))
	out := s.Scan(candidate(t, "a\nx\nb\n"))
	require.Len(t, out.Records, 3)
	assert.True(t, out.Records[0].IsContext())
	assert.Empty(t, out.Records[0].Spans)
	assert.False(t, out.Records[1].IsContext())
	assert.Equal(t, int64(4), out.Records[2].Offset)
}

func TestMaxCountKeepsTrailingContext(t *testing.T) {
	s := New(mustCompile(t, "a", pattern.Options{}), WithMaxCount(1), WithContext(0, 2))
	out := s.Scan(candidate(t, "a1\na2\nb\nc\n"))
	assert.Equal(t, []string{"1:a1", "2+a2", "3+b"}, lines(out.Records).summary())
	assert.Equal(t, 1, out.Selected())
}

func TestWithContextClampsNegative(t *testing.T) {
	s := New(mustCompile(t, "a", pattern.Options{}), WithContext(-1, -5))
	assert.Equal(t, 0, s.options.Before)
	assert.Equal(t, 0, s.options.After)
}

func TestStdin(t *testing.T) {
	stdin := walker.Candidate{Path: walker.StdinName, Abs: walker.StdinPath}

	s := New(mustCompile(t, "socks", pattern.Options{}), WithStdin(strings.NewReader("shoes\nsocks\n")))
	out := s.Scan(stdin)
	require.Equal(t, Matched, out.Kind)
	require.Len(t, out.Records, 1)
	assert.Equal(t, walker.StdinName, out.Records[0].Path)
	assert.Equal(t, 2, out.Records[0].Line)
	assert.Equal(t, int64(6), out.Records[0].Offset)

	s = New(mustCompile(t, "socks", pattern.Options{}), WithStdin(strings.NewReader("socks\x00")))
	out = s.Scan(stdin)
	assert.Equal(t, Skipped, out.Kind)
	assert.Equal(t, ReasonBinary, out.Reason)

	s = New(mustCompile(t, "socks", pattern.Options{}), WithStdin(strings.NewReader("")))
	assert.Equal(t, NoMatch, s.Scan(stdin).Kind)

	s = New(mustCompile(t, "socks", pattern.Options{}), WithStdin(iotest.ErrReader(errors.New("EIO"))))
	out = s.Scan(stdin)
	assert.Equal(t, Skipped, out.Kind)
	assert.Equal(t, ReasonUnreadable, out.Reason)
	assert.Error(t, out.Err)
}
