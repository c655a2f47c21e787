package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSpans(t *testing.T) {
	tests := []struct {
		name string
		expr string
		opts Options
		line string
		want []Span
	}{
		{"regex twice", `fo+`, Options{}, "foo and fooo", []Span{{0, 3}, {8, 12}}},
		{"no match", `bar`, Options{}, "foo", nil},
		{"ignore case", `todo`, Options{IgnoreCase: true}, "TODO: x", []Span{{0, 4}}},
		{"smart case lower", `todo`, Options{SmartCase: true}, "ToDo", []Span{{0, 4}}},
		{"smart case upper", `ToDo`, Options{SmartCase: true}, "todo", nil},
		{"literal metachars", `a.b`, Options{Literal: true}, "axb a.b", []Span{{4, 7}}},
		{"literal ignore case", `A.B`, Options{Literal: true, IgnoreCase: true}, "a.b", []Span{{0, 3}}},
		{"word boundary", `cat`, Options{Word: true}, "concat cat cats", []Span{{7, 10}}},
		{"multibyte offsets", `é+`, Options{}, "caféé!", []Span{{3, 7}}},
		{"backtrack lookahead", `foo(?=bar)`, Options{Engine: EngineBacktrack}, "foobaz foobar", []Span{{7, 10}}},
		{"backtrack multibyte", `b`, Options{Engine: EngineBacktrack}, "ééb", []Span{{4, 5}}},
		{"backtrack backreference", `(\w)\1`, Options{Engine: EngineBacktrack}, "abccd", []Span{{2, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Find([]byte(tt.line)))
		})
	}
}

func TestEmptyLiteralMatchesEveryLine(t *testing.T) {
	p, err := Compile("", Options{Literal: true})
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 0}}, p.Find([]byte("anything")))
	assert.Equal(t, []Span{{0, 0}}, p.Find(nil))
}

func TestSelectInvert(t *testing.T) {
	p, err := Compile("skip", Options{Invert: true})
	require.NoError(t, err)

	spans, ok := p.Select([]byte("skip me"))
	assert.False(t, ok)
	assert.Nil(t, spans)

	spans, ok = p.Select([]byte("keep me"))
	assert.True(t, ok)
	assert.Equal(t, []Span{{0, 7}}, spans)
}

func TestInvalidExpression(t *testing.T) {
	_, err := Compile("a(b", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = Compile("a(b", Options{Engine: EngineBacktrack})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = Compile("foo(?=bar)", Options{})
	assert.True(t, errors.Is(err, ErrInvalid), "lookahead needs the backtracking engine")
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, EngineRE2, e)

	e, err = ParseEngine("PCRE")
	require.NoError(t, err)
	assert.Equal(t, EngineBacktrack, e)

	_, err = ParseEngine("nfa")
	assert.Error(t, err)
}

func TestMayMatch(t *testing.T) {
	p, err := Compile(`^func \w+`, Options{})
	require.NoError(t, err)
	assert.True(t, p.MayMatch([]byte("package x\nfunc main() {}\n")))
	assert.False(t, p.MayMatch([]byte("package x\nvar y = 1\n")))
	assert.True(t, p.MayMatch([]byte("package x\r\nvar y = 1\r\n")), "CRLF buffers are not prefiltered")

	anchored, err := Compile(`\Afunc`, Options{})
	require.NoError(t, err)
	assert.True(t, anchored.MayMatch([]byte("package x\n")))

	inverted, err := Compile("x", Options{Invert: true})
	require.NoError(t, err)
	assert.True(t, inverted.MayMatch([]byte("xxx")))

	lit, err := Compile("needle", Options{Literal: true})
	require.NoError(t, err)
	assert.False(t, lit.MayMatch([]byte("haystack")))
}

func TestMayMatchKeepsLinesSelectedUnderInlineFlags(t *testing.T) {
	buf := []byte("x\nfoo\n")
	for _, expr := range []string{`(?-m)^foo`, `(?-m:^foo$)`, `(?i-m)^FOO`, `(?s)^foo`} {
		t.Run(expr, func(t *testing.T) {
			p, err := Compile(expr, Options{})
			require.NoError(t, err)

			_, selected := p.Select([]byte("foo"))
			require.True(t, selected)
			assert.True(t, p.MayMatch(buf), "a file with a selected line must pass the prefilter")
		})
	}

	lit, err := Compile(`(?-m)`, Options{Literal: true, IgnoreCase: true})
	require.NoError(t, err)
	assert.False(t, lit.MayMatch([]byte("plain text\n")), "quoted literals keep the prefilter")
}

func TestDecodeInvalidUTF8(t *testing.T) {
	runes, offsets := decode([]byte{'a', 0xff, 'b'})
	assert.Len(t, runes, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, offsets)
}
