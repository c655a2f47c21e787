package scheduler

import (
	"runtime"

	"github.com/bethropolis/tgrep/internal/logger"
	"github.com/bethropolis/tgrep/internal/stop"
)

// RunOptions configures a Scheduler
type RunOptions struct {
	Logger  logger.Logger
	Workers int
	// QueueSize bounds both the work and the result queue. 0 means twice
	// the number of workers.
	QueueSize int
	// Grouped releases results in walk order instead of completion order.
	Grouped bool
	Stop    *stop.Flag
}

func defaultOptions() RunOptions {
	return RunOptions{
		Logger:  logger.Nop{},
		Workers: runtime.NumCPU(),
	}
}

// Option is a functional option for configuring RunOptions
type Option func(*RunOptions)

// WithLogger sets a custom logger for the scheduler
func WithLogger(log logger.Logger) Option {
	return func(opts *RunOptions) {
		if log != nil {
			opts.Logger = log
		}
	}
}

// WithWorkers sets the number of concurrent scanners
func WithWorkers(workers int) Option {
	return func(opts *RunOptions) {
		if workers > 0 {
			opts.Workers = workers
		}
	}
}

// WithQueueSize sets the capacity of the work and result queues.
func WithQueueSize(size int) Option {
	return func(opts *RunOptions) {
		if size > 0 {
			opts.QueueSize = size
		}
	}
}

// WithGrouped enables walk-order output.
func WithGrouped(enabled bool) Option {
	return func(opts *RunOptions) {
		opts.Grouped = enabled
	}
}

// WithStop shares a cancellation flag with the walker and the caller.
func WithStop(f *stop.Flag) Option {
	return func(opts *RunOptions) {
		opts.Stop = f
	}
}
