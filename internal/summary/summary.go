// Package summary aggregates scan results and displays statistics
package summary

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/bethropolis/tgrep/internal/scanner"
	"github.com/bethropolis/tgrep/internal/scheduler"
	"github.com/bethropolis/tgrep/internal/walker"
)

// Logger defines the minimal logging interface required
type Logger interface {
	Info(format string, args ...interface{})
}

// Scan outcomes reported with the same wording as walk skips.
const (
	ReasonBinary     walker.SkippedReason = "Skipped (Binary Content)"
	ReasonSizeLimit  walker.SkippedReason = "Skipped (Size Limit Exceeded)"
	ReasonNotRegular walker.SkippedReason = "Skipped (Not a Regular File)"
	ReasonReadError  walker.SkippedReason = "Skipped (Read Error)"
)

func scanReason(r scanner.Reason) walker.SkippedReason {
	switch r {
	case scanner.ReasonBinary:
		return ReasonBinary
	case scanner.ReasonTooLarge:
		return ReasonSizeLimit
	case scanner.ReasonSpecial:
		return ReasonNotRegular
	default:
		return ReasonReadError
	}
}

// Item holds information about a path that was not searched.
type Item struct {
	Path   string               `json:"path"`
	Reason walker.SkippedReason `json:"reason"`
	IsDir  bool                 `json:"is_dir"`
	Err    string               `json:"error,omitempty"`
}

// Tracker collects items
type Tracker struct {
	items []Item
	mutex sync.Mutex
}

// NewTracker creates a new Tracker
func NewTracker(capacity int) *Tracker {
	return &Tracker{
		items: make([]Item, 0, capacity),
	}
}

// Track adds an item to the tracker
func (t *Tracker) Track(item Item) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.items = append(t.items, item)
}

// Items returns a copy of the tracked items sorted by path.
func (t *Tracker) Items() []Item {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	items := make([]Item, len(t.items))
	copy(items, t.items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
	return items
}

// Summary aggregates the results of one run.
type Summary struct {
	Files      int64
	Scanned    int64
	Matched    int64
	MatchLines int64
	Skipped    int64
	Ignored    int64
	Filtered   int64
	// Errors counts the skipped files that hit an I/O error.
	Errors     int64
	Duration   time.Duration
	// Err is the fatal error that ended the run, if any.
	Err error

	skipped *Tracker
	ignored *Tracker
}

// New creates an empty Summary.
func New() *Summary {
	return &Summary{
		skipped: NewTracker(16),
		ignored: NewTracker(64),
	}
}

// Add accounts for one scheduler result.
func (s *Summary) Add(r scheduler.Result) {
	e := r.Entry
	if !e.IsDir {
		s.Files++
	}
	item := Item{Path: e.Path, Reason: e.Reason, IsDir: e.IsDir}
	if e.Err != nil {
		item.Err = e.Err.Error()
	}

	switch e.Kind {
	case walker.KindIgnored:
		s.Ignored++
		s.ignored.Track(item)
	case walker.KindFiltered:
		s.Filtered++
	case walker.KindSkipped:
		s.Skipped++
		s.skipped.Track(item)
	case walker.KindFile:
		s.addOutcome(item, r.Outcome)
	}
}

func (s *Summary) addOutcome(item Item, out scanner.Outcome) {
	if out.Err != nil {
		item.Err = out.Err.Error()
	}
	switch out.Kind {
	case scanner.NoMatch:
		s.Scanned++
	case scanner.Matched:
		s.Scanned++
		s.Matched++
		s.MatchLines += int64(out.Selected())
	case scanner.Skipped:
		s.Skipped++
		if out.Err != nil {
			s.Errors++
		}
		item.Reason = scanReason(out.Reason)
		s.skipped.Track(item)
	}
}

// Finish records the run duration and fatal error.
func (s *Summary) Finish(d time.Duration, err error) {
	s.Duration = d
	s.Err = err
}

// HasMatches reports whether any line was selected.
func (s *Summary) HasMatches() bool {
	return s.Matched > 0
}

// SkippedItems returns what could not be searched, sorted by path.
func (s *Summary) SkippedItems() []Item {
	return s.skipped.Items()
}

// IgnoredItems returns what ignore rules excluded, sorted by path.
func (s *Summary) IgnoredItems() []Item {
	return s.ignored.Items()
}

// DisplayResults shows the end results of a search
func DisplayResults(logger Logger, s *Summary, quiet bool) {
	if quiet {
		return
	}
	logger.Info("Searched %d of %d files: %d matched (%d lines), %d skipped, %d ignored, %d filtered, %d errors.",
		s.Scanned, s.Files, s.Matched, s.MatchLines, s.Skipped, s.Ignored, s.Filtered, s.Errors)
	logger.Info("Search complete in %v.", s.Duration.Round(time.Millisecond))
}

// DisplayItems formats and prints a titled list of items, one per line
// prefixed with label.
func DisplayItems(
	logger Logger,
	title, label string,
	items []Item,
	output io.Writer,
	quiet bool,
) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			logger.Info(format, args...)
		}
	}

	infoLog("--- %s (%d) ---", title, len(items))
	if len(items) > 0 {
		for _, item := range items {
			typeStr := "FILE"
			if item.IsDir {
				typeStr = "DIR " // Add space for alignment
			}
			detail := ""
			if item.Err != "" {
				detail = ": " + item.Err
			}
			fmt.Fprintf(output, "%s %s: %-.*s [%s]%s\n",
				label,
				typeStr,
				200, // Max width for path column
				item.Path,
				item.Reason,
				detail,
			)
		}
	} else {
		infoLog("No items.")
	}
	infoLog("--- End %s ---", title)
}
