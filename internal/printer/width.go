package printer

import (
	"os"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/bethropolis/tgrep/internal/pattern"
)

// minMargin is the least context kept on each side of a truncated match.
const minMargin = 8

// TerminalWidth returns the column count of f, or 0 when f is not a
// terminal.
func TerminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

// window returns the byte range of text to show so that it fits in width
// display columns, centred on first. Lines that already fit are returned
// whole.
func window(text []byte, first pattern.Span, width int) (lo, hi int) {
	if runewidth.StringWidth(string(text)) <= width {
		return 0, len(text)
	}
	matchWidth := runewidth.StringWidth(string(text[first.Start:first.End]))
	margin := max((width-matchWidth)/2, minMargin)

	lo = first.Start
	for used := 0; lo > 0; {
		r, size := utf8.DecodeLastRune(text[:lo])
		w := runewidth.RuneWidth(r)
		if used+w > margin {
			break
		}
		used += w
		lo -= size
	}

	hi = first.End
	for used := 0; hi < len(text); {
		r, size := utf8.DecodeRune(text[hi:])
		w := runewidth.RuneWidth(r)
		if used+w > margin {
			break
		}
		used += w
		hi += size
	}
	return lo, hi
}
