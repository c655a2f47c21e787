// Package app runs one search from a resolved configuration
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/bethropolis/tgrep/internal/config"
	"github.com/bethropolis/tgrep/internal/logger"
	"github.com/bethropolis/tgrep/internal/scanner"
	"github.com/bethropolis/tgrep/internal/scheduler"
	"github.com/bethropolis/tgrep/internal/setup"
	"github.com/bethropolis/tgrep/internal/summary"
)

// Exit codes
const (
	ExitMatch   = 0
	ExitNoMatch = 1
	ExitError   = 2
)

// App encapsulates the main application functionality
type App struct {
	cfg       *config.Config
	log       *logger.Console
	useColors bool
	Input     io.Reader
	Output    io.Writer
	Errors    io.Writer
}

// New creates a new App writing results to stdout and logs to stderr.
func New(cfg *config.Config, stdout, stderr io.Writer) *App {
	useColors := false
	if f, ok := stderr.(*os.File); ok {
		useColors = cfg.UseColors(f)
	}
	return &App{
		cfg:       cfg,
		log:       logger.New(stderr, cfg.LogLevelValue(), useColors),
		useColors: useColors,
		Input:     os.Stdin,
		Output:    stdout,
		Errors:    stderr,
	}
}

// Run executes the search and returns the process exit code: 0 when a line
// was selected, 1 when none was, 2 on any error.
func (a *App) Run(ctx context.Context) int {
	startTime := time.Now()

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.cfg.Timeout))
		defer cancel()
	}

	// Helper for info messages, suppressed by quiet flag
	infoLog := func(format string, args ...interface{}) {
		if !a.cfg.Quiet {
			a.log.Info(format, args...)
		}
	}

	a.log.Debug("Config: %s", a.cfg)
	if a.cfg.ConfigFile != "" {
		infoLog("Loaded config file %s", a.cfg.ConfigFile)
	}

	s, err := setup.Configure(a.cfg, a.Input, a.Output, a.log, infoLog)
	if err != nil {
		a.log.Error("%v", err)
		return ExitError
	}

	sum := summary.New()
	emit := func(r scheduler.Result) error {
		sum.Add(r)
		switch r.Outcome.Kind {
		case scanner.Matched:
			return s.Printer.PrintFile(r.Entry.Path, r.Outcome.Records)
		case scanner.Skipped:
			if r.Outcome.Err != nil {
				a.log.Warn("Error searching '%s': %v", r.Entry.Path, r.Outcome.Err)
			} else {
				a.log.Debug("Skipped '%s': %s", r.Entry.Path, r.Outcome.Reason)
			}
		}
		return nil
	}

	infoLog("Searching %v for %q", s.Roots, a.cfg.Pattern)
	runErr := s.Scheduler.Run(ctx, s.Walk(), emit)
	if err := s.Printer.Finalize(); err != nil && runErr == nil {
		runErr = err
	}
	sum.Finish(time.Since(startTime), runErr)
	a.log.Debug("Printed %d records; walk stats: %+v", s.Printer.GetCount(), s.Walker.Stats())

	a.report(sum)

	if runErr != nil {
		switch {
		case errors.Is(runErr, context.DeadlineExceeded):
			a.log.Error("Timeout of %v reached.", a.cfg.Timeout)
		case errors.Is(runErr, context.Canceled):
			a.log.Error("Search interrupted.")
		default:
			a.log.Error("Search failed: %v", runErr)
		}
		return ExitError
	}
	if sum.HasMatches() {
		return ExitMatch
	}
	return ExitNoMatch
}

// report prints the statistics and item lists that were asked for. They are
// written even when the log level would hide info messages.
func (a *App) report(sum *summary.Summary) {
	if !a.cfg.Stats && !a.cfg.ShowSkipped && !a.cfg.ShowIgnored {
		return
	}
	out := logger.New(a.Errors, logger.LevelInfo, a.useColors)

	if a.cfg.ShowSkipped {
		summary.DisplayItems(out, "Skipped Items", "Skipped", sum.SkippedItems(), a.Errors, false)
	}
	if a.cfg.ShowIgnored {
		summary.DisplayItems(out, "Ignored Items", "Ignored", sum.IgnoredItems(), a.Errors, false)
	}
	if a.cfg.Stats {
		summary.DisplayResults(out, sum, false)
	}
}
