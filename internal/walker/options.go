package walker

import (
	"github.com/bethropolis/tgrep/internal/filter"
	"github.com/bethropolis/tgrep/internal/ignore"
	"github.com/bethropolis/tgrep/internal/logger"
	"github.com/bethropolis/tgrep/internal/stop"
)

// WalkOptions configures a Walker
type WalkOptions struct {
	Logger         logger.Logger
	FollowSymlinks bool
	Filter         *filter.Filter
	Stop           *stop.Flag
	// MaxDepth limits descent; 0 means unlimited. Entries directly under
	// the root are at depth 1.
	MaxDepth    int
	TreeOptions []ignore.Option
}

func defaultOptions() WalkOptions {
	return WalkOptions{
		Logger: logger.Nop{},
	}
}

// Option is a functional option for configuring WalkOptions
type Option func(*WalkOptions)

// WithLogger sets a custom logger for the walker
func WithLogger(log logger.Logger) Option {
	return func(opts *WalkOptions) {
		if log != nil {
			opts.Logger = log
		}
	}
}

// WithFollowSymlinks makes the walker resolve symbolic links.
func WithFollowSymlinks(enabled bool) Option {
	return func(opts *WalkOptions) {
		opts.FollowSymlinks = enabled
	}
}

// WithFilter restricts candidates to the paths f allows. A nil filter
// allows everything.
func WithFilter(f *filter.Filter) Option {
	return func(opts *WalkOptions) {
		opts.Filter = f
	}
}

// WithStop makes the walker poll f between directory entries.
func WithStop(f *stop.Flag) Option {
	return func(opts *WalkOptions) {
		opts.Stop = f
	}
}

// WithMaxDepth limits how deep the walker descends.
func WithMaxDepth(depth int) Option {
	return func(opts *WalkOptions) {
		if depth >= 0 {
			opts.MaxDepth = depth
		}
	}
}

// WithTreeOptions sets the options used to build the ignore tree of each walk.
func WithTreeOptions(treeOpts ...ignore.Option) Option {
	return func(opts *WalkOptions) {
		opts.TreeOptions = append(opts.TreeOptions, treeOpts...)
	}
}
