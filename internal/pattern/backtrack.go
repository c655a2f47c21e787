package pattern

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single backtracking match on pathological input.
const matchTimeout = 2 * time.Second

type backtrack struct {
	re *regexp2.Regexp
}

func compileBacktrack(expr string, opts Options) (matcher, error) {
	body := expr
	if opts.Literal {
		body = regexp2.Escape(expr)
	}
	if opts.Word {
		body = `\b(?:` + body + `)\b`
	}
	flags := regexp2.None
	if opts.IgnoreCase {
		flags |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(body, flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	re.MatchTimeout = matchTimeout
	return &backtrack{re: re}, nil
}

// find converts regexp2's rune indexes back to byte offsets. Lines that are
// not valid UTF-8 are matched rune by rune with U+FFFD substituted, which
// keeps the offsets table aligned with the input bytes.
func (b *backtrack) find(line []byte) []Span {
	runes, offsets := decode(line)
	m, err := b.re.FindRunesMatch(runes)
	var spans []Span
	for m != nil && err == nil {
		start := offsets[m.Index]
		end := offsets[m.Index+m.Length]
		spans = append(spans, Span{Start: start, End: end})
		m, err = b.re.FindNextMatch(m)
	}
	return spans
}

func (*backtrack) anywhere([]byte) bool { return true }

func (*backtrack) canPrefilter() bool { return false }

// decode returns the runes of b and, for each rune index plus one past the
// end, the byte offset where it starts.
func decode(b []byte) ([]rune, []int) {
	runes := make([]rune, 0, len(b))
	offsets := make([]int, 0, len(b)+1)
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		runes = append(runes, r)
		offsets = append(offsets, i)
		i += size
	}
	offsets = append(offsets, len(b))
	return runes, offsets
}
