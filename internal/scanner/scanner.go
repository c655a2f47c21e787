package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bethropolis/tgrep/internal/pattern"
	"github.com/bethropolis/tgrep/internal/walker"
)

var errTooLargeToMap = errors.New("scanner: file too large to map")

// samplePool holds the per-scan sample buffers.
var samplePool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, sampleSize)
		return &b
	},
}

// Scanner searches files for lines selected by a shared, immutable pattern.
// It holds no per-file state and is safe for concurrent use.
type Scanner struct {
	pattern *pattern.Pattern
	options ScanOptions
}

// New creates a Scanner for p.
func New(p *pattern.Pattern, opts ...Option) *Scanner {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Scanner{pattern: p, options: options}
}

// Scan searches the candidate file. Every failure is reported in the
// outcome; Scan never panics on I/O problems.
func (s *Scanner) Scan(c walker.Candidate) Outcome {
	log := s.options.Logger
	if c.Abs == walker.StdinPath {
		return s.scanReader(c.Path, s.options.Stdin)
	}

	info := c.Info
	if info == nil {
		var err error
		if info, err = os.Stat(c.Abs); err != nil {
			return skipped(ReasonUnreadable, err)
		}
	}

	if !info.Mode().IsRegular() {
		log.Debug("scan: skipping [%s]: not a regular file (%s)", c.Path, info.Mode().Type())
		return skipped(ReasonSpecial, nil)
	}
	size := info.Size()
	if size == 0 {
		return Outcome{Kind: NoMatch}
	}
	if s.options.MaxFileSize > 0 && size > s.options.MaxFileSize {
		log.Debug("scan: skipping [%s]: exceeds size limit (%d > %d bytes)", c.Path, size, s.options.MaxFileSize)
		return skipped(ReasonTooLarge, nil)
	}

	f, err := os.Open(c.Abs)
	if err != nil {
		log.Debug("scan: cannot open [%s]: %v", c.Path, err)
		return skipped(ReasonUnreadable, err)
	}
	defer f.Close()

	bufp := samplePool.Get().(*[]byte)
	defer samplePool.Put(bufp)
	sample := *bufp
	if size < int64(len(sample)) {
		sample = sample[:size]
	}
	n, err := io.ReadFull(f, sample)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		log.Debug("scan: cannot read [%s]: %v", c.Path, err)
		return skipped(ReasonUnreadable, fmt.Errorf("scanner: reading %s: %w", c.Path, err))
	}
	sample = sample[:n]
	whole := int64(n) >= size

	if isBinary(sample, whole) {
		log.Debug("scan: skipping [%s]: binary content", c.Path)
		return skipped(ReasonBinary, nil)
	}

	if whole {
		return s.search(c.Path, sample)
	}

	data, release, err := s.load(f, size)
	if err != nil {
		log.Debug("scan: cannot read [%s]: %v", c.Path, err)
		return skipped(ReasonUnreadable, err)
	}
	defer release()
	return s.search(c.Path, data)
}

// scanReader searches everything r yields, such as standard input, which
// can be neither stat-ed nor mapped.
func (s *Scanner) scanReader(name string, r io.Reader) Outcome {
	if r == nil {
		return skipped(ReasonUnreadable, fmt.Errorf("scanner: %s: no reader", name))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		s.options.Logger.Debug("scan: cannot read [%s]: %v", name, err)
		return skipped(ReasonUnreadable, fmt.Errorf("scanner: reading %s: %w", name, err))
	}
	if len(data) == 0 {
		return Outcome{Kind: NoMatch}
	}
	if s.options.MaxFileSize > 0 && int64(len(data)) > s.options.MaxFileSize {
		return skipped(ReasonTooLarge, nil)
	}
	if isBinary(data[:min(len(data), sampleSize)], len(data) <= sampleSize) {
		s.options.Logger.Debug("scan: skipping [%s]: binary content", name)
		return skipped(ReasonBinary, nil)
	}
	return s.search(name, data)
}

// load maps the file, falling back to reading it into memory.
func (s *Scanner) load(f *os.File, size int64) ([]byte, func(), error) {
	if s.options.Mmap {
		data, release, err := mapFile(f, size)
		if err == nil {
			return data, release, nil
		}
		s.options.Logger.Debug("scan: mapping %s failed, reading instead: %v", f.Name(), err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}

// search splits data into lines and records every selected one, plus the
// requested context around it. Record text is copied so that it outlives a
// mapping.
func (s *Scanner) search(path string, data []byte) Outcome {
	if !s.pattern.MayMatch(data) {
		return Outcome{Kind: NoMatch}
	}

	before, after, maxCount := s.options.Before, s.options.After, s.options.MaxCount
	var (
		records   []Record
		pending   []Record // up to `before` lines seen since the last record
		afterLeft int
		selected  int
	)
	lineNo := 0
	for off := 0; off < len(data); {
		end := bytes.IndexByte(data[off:], '\n')
		next := len(data)
		if end < 0 {
			end = len(data)
		} else {
			end += off
			next = end + 1
		}
		line := data[off:end]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lineNo++

		done := maxCount > 0 && selected >= maxCount
		if done && afterLeft == 0 {
			break
		}

		rec := Record{Path: path, Line: lineNo, Offset: int64(off)}
		spans, ok := s.pattern.Select(line)
		switch {
		case ok && !done:
			records = append(records, pending...)
			pending = pending[:0]
			rec.Text, rec.Spans = bytes.Clone(line), spans
			records = append(records, rec)
			selected++
			afterLeft = after
		case afterLeft > 0:
			rec.Text, rec.Context = bytes.Clone(line), ContextAfter
			records = append(records, rec)
			afterLeft--
		case before > 0:
			if len(pending) == before {
				pending = append(pending[:0], pending[1:]...)
			}
			rec.Text, rec.Context = bytes.Clone(line), ContextBefore
			pending = append(pending, rec)
		}
		off = next
	}

	if selected == 0 {
		return Outcome{Kind: NoMatch}
	}
	return Outcome{Kind: Matched, Records: records}
}

func skipped(reason Reason, err error) Outcome {
	return Outcome{Kind: Skipped, Reason: reason, Err: err}
}
