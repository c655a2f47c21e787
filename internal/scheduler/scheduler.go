// Package scheduler runs the walker and a fixed pool of scanners as a
// pipeline connected by bounded queues
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bethropolis/tgrep/internal/scanner"
	"github.com/bethropolis/tgrep/internal/stop"
	"github.com/bethropolis/tgrep/internal/walker"
)

// ErrCancelled is returned when a run stopped before every entry was emitted.
var ErrCancelled = errors.New("scheduler: cancelled")

// Scanner scans one candidate file.
type Scanner interface {
	Scan(c walker.Candidate) scanner.Outcome
}

// WalkFunc produces walk entries in traversal order by calling emit. It
// must stop and return emit's error when emit fails.
type WalkFunc func(ctx context.Context, emit func(walker.Entry) error) error

// Result pairs a walk entry with its scan outcome. Outcome is the zero value
// for entries that are not candidates.
type Result struct {
	// Seq is the position of the entry in walk order, starting at 0.
	Seq     int64
	Entry   walker.Entry
	Outcome scanner.Outcome
}

// Scanned reports whether the entry went through a scanner.
func (r Result) Scanned() bool {
	return r.Entry.Kind == walker.KindFile
}

// Scheduler distributes candidates across a worker pool.
type Scheduler struct {
	scanner Scanner
	options RunOptions
}

// New creates a Scheduler.
func New(s Scanner, opts ...Option) *Scheduler {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.QueueSize == 0 {
		options.QueueSize = 2 * options.Workers
	}
	return &Scheduler{scanner: s, options: options}
}

// Run walks, scans and calls emit for every entry from the calling
// goroutine, so emit needs no locking. Results arrive in completion order,
// or in walk order when grouped. An error from emit stops the run and is
// returned; a cancelled context yields ErrCancelled.
func (s *Scheduler) Run(ctx context.Context, walk WalkFunc, emit func(Result) error) error {
	startTime := time.Now()
	log := s.options.Logger

	flag := s.options.Stop
	if flag == nil {
		flag = stop.New()
	}
	release := flag.Watch(ctx)
	defer release()

	work := make(chan Result, s.options.QueueSize)
	results := make(chan Result, s.options.QueueSize)

	send := func(ch chan<- Result, r Result) bool {
		select {
		case ch <- r:
			return true
		case <-flag.Done():
			return false
		}
	}

	var producers sync.WaitGroup
	var walkErr error
	var scanned atomic.Int64

	producers.Add(1)
	go func() {
		defer producers.Done()
		defer close(work)
		var seq int64
		walkErr = walk(ctx, func(e walker.Entry) error {
			r := Result{Seq: seq, Entry: e}
			seq++
			ch := results
			if e.Kind == walker.KindFile {
				ch = work
			}
			if !send(ch, r) {
				return ErrCancelled
			}
			return nil
		})
		log.Debug("walker finished after %d entries", seq)
	}()

	log.Debug("starting %d workers (queue size %d, grouped=%v)", s.options.Workers, s.options.QueueSize, s.options.Grouped)
	for i := 0; i < s.options.Workers; i++ {
		producers.Add(1)
		go func(id int) {
			defer producers.Done()
			log.Debug("worker %d: started", id)
			for r := range work {
				if flag.Stopped() {
					log.Debug("worker %d: received cancellation signal", id)
					return
				}
				r.Outcome = s.scanner.Scan(r.Entry.Candidate)
				scanned.Add(1)
				if !send(results, r) {
					return
				}
			}
			log.Debug("worker %d: finished", id)
		}(i + 1)
	}

	go func() {
		producers.Wait()
		close(results)
	}()

	var order *reorder
	if s.options.Grouped {
		order = newReorder()
	}
	var emitErr error
	for r := range results {
		if flag.Stopped() {
			continue
		}
		batch := []Result{r}
		if order != nil {
			batch = order.push(r)
		}
		for _, br := range batch {
			if err := emit(br); err != nil {
				emitErr = err
				flag.Stop(err)
				break
			}
		}
	}

	log.Debug("scheduler: scanned %d files in %s", scanned.Load(), time.Since(startTime))

	// The watch callback runs on its own goroutine and may not have fired yet.
	if ctx.Err() != nil {
		flag.Stop(context.Cause(ctx))
	}

	switch {
	case emitErr != nil:
		return emitErr
	case walkErr != nil && !errors.Is(walkErr, ErrCancelled) && !errors.Is(walkErr, walker.ErrCancelled):
		return walkErr
	case flag.Stopped():
		if cause := flag.Cause(); cause != nil {
			return errors.Join(ErrCancelled, cause)
		}
		return ErrCancelled
	case order != nil && order.buffered() > 0:
		return errors.New("scheduler: results missing from walk order")
	}
	return nil
}
