package scanner

import (
	"bytes"
	"unicode/utf8"
)

// sampleSize is how much of a file is inspected before deciding whether it
// is text.
const sampleSize = 8 << 10

// isBinary reports whether sample looks like binary content: it contains a
// NUL byte or is not valid UTF-8. Unless the sample is the whole file, a
// multi-byte sequence cut off at its end is not held against it.
func isBinary(sample []byte, whole bool) bool {
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	if utf8.Valid(sample) {
		return false
	}
	if whole {
		return true
	}

	cut := len(sample)
	for i := len(sample) - 1; i >= 0 && i >= len(sample)-utf8.UTFMax; i-- {
		if utf8.RuneStart(sample[i]) {
			if !utf8.FullRune(sample[i:]) {
				cut = i
			}
			break
		}
	}
	return !utf8.Valid(sample[:cut])
}
