package scanner

import (
	"io"
	"os"

	"github.com/bethropolis/tgrep/internal/logger"
)

// ScanOptions configures a Scanner
type ScanOptions struct {
	Logger logger.Logger
	// MaxFileSize skips larger files; 0 means no limit.
	MaxFileSize int64
	// MaxCount stops a file after that many selected lines; 0 means all.
	MaxCount int
	// Mmap maps files into memory instead of reading them.
	Mmap bool
	// Before and After are the context lines kept around each selected line.
	Before int
	After  int
	// Stdin is read for the candidate named walker.StdinPath.
	Stdin io.Reader
}

func defaultOptions() ScanOptions {
	return ScanOptions{
		Logger: logger.Nop{},
		Mmap:   true,
		Stdin:  os.Stdin,
	}
}

// Option is a functional option for configuring ScanOptions
type Option func(*ScanOptions)

// WithLogger sets a custom logger for the scanner
func WithLogger(log logger.Logger) Option {
	return func(opts *ScanOptions) {
		if log != nil {
			opts.Logger = log
		}
	}
}

// WithMaxFileSize sets the maximum file size to scan in bytes
func WithMaxFileSize(maxBytes int64) Option {
	return func(opts *ScanOptions) {
		if maxBytes >= 0 {
			opts.MaxFileSize = maxBytes
		}
	}
}

// WithMaxCount limits the records produced per file.
func WithMaxCount(n int) Option {
	return func(opts *ScanOptions) {
		if n >= 0 {
			opts.MaxCount = n
		}
	}
}

// WithMmap enables or disables memory-mapped reads.
func WithMmap(enabled bool) Option {
	return func(opts *ScanOptions) {
		opts.Mmap = enabled
	}
}

// WithContext keeps before lines ahead of and after lines behind every
// selected line.
func WithContext(before, after int) Option {
	return func(opts *ScanOptions) {
		opts.Before = max(before, 0)
		opts.After = max(after, 0)
	}
}

// WithStdin sets the reader searched for standard input.
func WithStdin(r io.Reader) Option {
	return func(opts *ScanOptions) {
		if r != nil {
			opts.Stdin = r
		}
	}
}
