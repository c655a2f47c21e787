package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/bethropolis/tgrep/internal/ignore"
)

// Walker traverses directory trees depth first, pruning ignored
// directories before their ignore files are ever read. A Walker may be
// reused; every Walk builds a fresh ignore tree.
type Walker struct {
	options WalkOptions

	stats struct {
		files      atomic.Int64
		dirs       atomic.Int64
		candidates atomic.Int64
		ignored    atomic.Int64
		filtered   atomic.Int64
		skipped    atomic.Int64
	}
}

// New creates a Walker.
func New(opts ...Option) *Walker {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Walker{options: options}
}

// Stats returns the counters accumulated over every Walk so far.
func (w *Walker) Stats() Stats {
	return Stats{
		Files:      w.stats.files.Load(),
		Dirs:       w.stats.dirs.Load(),
		Candidates: w.stats.candidates.Load(),
		Ignored:    w.stats.ignored.Load(),
		Filtered:   w.stats.filtered.Load(),
		Skipped:    w.stats.skipped.Load(),
	}
}

// dirState describes the directory being read.
type dirState struct {
	abs     string
	display string
	rel     string
	depth   int
}

// Walk traverses root and calls fn for every entry in deterministic order.
// A root that is a file yields exactly that file. An error returned by fn
// aborts the walk and is returned as is.
func (w *Walker) Walk(ctx context.Context, root string, fn func(Entry) error) error {
	startTime := time.Now()
	log := w.options.Logger

	if root == StdinPath {
		return w.emit(fn, Entry{Candidate: Candidate{Path: StdinName, Abs: StdinPath, Rel: StdinName}})
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: failed to get absolute path for '%s': %w", ErrInvalidRoot, root, err)
	}

	if !info.IsDir() {
		return w.emit(fn, Entry{Candidate: Candidate{Path: root, Abs: absRoot, Info: info}})
	}

	tree, err := ignore.New(absRoot, w.options.TreeOptions...)
	if err != nil {
		return fmt.Errorf("walker: %w", err)
	}

	log.Debug("walk started. Root: %s, follow symlinks: %v, max depth: %d",
		absRoot, w.options.FollowSymlinks, w.options.MaxDepth)

	var ancestors []fs.FileInfo
	if w.options.FollowSymlinks {
		ancestors = append(ancestors, info)
	}

	w.stats.dirs.Add(1)
	err = w.walkDir(ctx, tree, dirState{abs: absRoot, display: root}, ancestors, fn)
	log.Debug("walk of %s finished in %s", root, time.Since(startTime))
	return err
}

func (w *Walker) cancelled(ctx context.Context) bool {
	return w.options.Stop.Stopped() || ctx.Err() != nil
}

func (w *Walker) walkDir(ctx context.Context, tree *ignore.Tree, dir dirState, ancestors []fs.FileInfo, fn func(Entry) error) error {
	log := w.options.Logger

	entries, readErr := os.ReadDir(dir.abs)
	if readErr != nil {
		reason := ReasonSkippedWalkError
		if errors.Is(readErr, fs.ErrPermission) {
			reason = ReasonSkippedPermError
		}
		log.Warn("cannot read directory %q: %v", dir.display, readErr)
		if err := w.emit(fn, Entry{
			Candidate: Candidate{Path: dir.display, Abs: dir.abs, Rel: dir.rel, Depth: dir.depth},
			Kind:      KindSkipped,
			IsDir:     true,
			Reason:    reason,
			Err:       readErr,
		}); err != nil {
			return err
		}
		// ReadDir may still return the entries read before the failure.
		if len(entries) == 0 {
			return nil
		}
	}

	tree.Push(dir.abs)
	defer tree.Pop()

	for _, de := range entries {
		if w.cancelled(ctx) {
			return ErrCancelled
		}

		name := de.Name()
		child := dirState{
			abs:     filepath.Join(dir.abs, name),
			display: filepath.Join(dir.display, name),
			rel:     path.Join(dir.rel, name),
			depth:   dir.depth + 1,
		}
		entry := Entry{Candidate: Candidate{Path: child.display, Abs: child.abs, Rel: child.rel, Depth: child.depth}}

		var info fs.FileInfo
		isDir := de.IsDir()
		if de.Type()&fs.ModeSymlink != 0 {
			if !w.options.FollowSymlinks {
				if cause := tree.Check(child.abs, false); cause != ignore.NotIgnored {
					entry.Kind, entry.Reason = KindIgnored, reasonFor(cause)
				} else {
					entry.Kind, entry.Reason = KindSkipped, ReasonSkippedSymlink
				}
				if err := w.emit(fn, entry); err != nil {
					return err
				}
				continue
			}
			target, err := os.Stat(child.abs)
			if err != nil {
				log.Debug("broken symlink %q: %v", child.display, err)
				entry.Kind, entry.Reason, entry.Err = KindSkipped, ReasonSkippedInfoError, err
				if err := w.emit(fn, entry); err != nil {
					return err
				}
				continue
			}
			info, isDir = target, target.IsDir()
		}
		entry.IsDir = isDir

		if cause := tree.Check(child.abs, isDir); cause != ignore.NotIgnored {
			log.Debug("ignored %q (%s)", child.rel, cause)
			entry.Kind, entry.Reason = KindIgnored, reasonFor(cause)
			if err := w.emit(fn, entry); err != nil {
				return err
			}
			continue
		}

		if isDir {
			if err := w.descend(ctx, tree, child, entry, info, ancestors, fn); err != nil {
				return err
			}
			continue
		}

		if info == nil {
			var err error
			if info, err = de.Info(); err != nil {
				log.Debug("cannot stat %q: %v", child.display, err)
				entry.Kind, entry.Reason, entry.Err = KindSkipped, ReasonSkippedInfoError, err
				if err := w.emit(fn, entry); err != nil {
					return err
				}
				continue
			}
		}
		entry.Info = info

		if !w.options.Filter.Allow(child.rel) {
			entry.Kind, entry.Reason = KindFiltered, ReasonFilteredGlob
		}
		if err := w.emit(fn, entry); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) descend(ctx context.Context, tree *ignore.Tree, child dirState, entry Entry, info fs.FileInfo, ancestors []fs.FileInfo, fn func(Entry) error) error {
	if w.options.MaxDepth > 0 && child.depth >= w.options.MaxDepth {
		entry.Kind, entry.Reason = KindFiltered, ReasonFilteredDepth
		return w.emit(fn, entry)
	}

	if w.options.FollowSymlinks {
		if info == nil {
			var err error
			if info, err = os.Stat(child.abs); err != nil {
				entry.Kind, entry.Reason, entry.Err = KindSkipped, ReasonSkippedInfoError, err
				return w.emit(fn, entry)
			}
		}
		for _, a := range ancestors {
			if os.SameFile(a, info) {
				w.options.Logger.Warn("symlink loop at %q", child.display)
				entry.Kind, entry.Reason = KindSkipped, ReasonSkippedLoop
				return w.emit(fn, entry)
			}
		}
		ancestors = append(ancestors, info)
	}

	w.stats.dirs.Add(1)
	return w.walkDir(ctx, tree, child, ancestors, fn)
}

func (w *Walker) emit(fn func(Entry) error, e Entry) error {
	if !e.IsDir {
		w.stats.files.Add(1)
	}
	switch e.Kind {
	case KindFile:
		w.stats.candidates.Add(1)
	case KindIgnored:
		w.stats.ignored.Add(1)
	case KindFiltered:
		w.stats.filtered.Add(1)
	case KindSkipped:
		w.stats.skipped.Add(1)
	}
	return fn(e)
}
