package setup

import (
	"context"
	"io"
	"os"

	"github.com/bethropolis/tgrep/internal/config"
	"github.com/bethropolis/tgrep/internal/logger"
	"github.com/bethropolis/tgrep/internal/pattern"
	"github.com/bethropolis/tgrep/internal/printer"
	"github.com/bethropolis/tgrep/internal/scanner"
	"github.com/bethropolis/tgrep/internal/scheduler"
	"github.com/bethropolis/tgrep/internal/stop"
	"github.com/bethropolis/tgrep/internal/walker"
)

// Search holds the wired components of one run.
type Search struct {
	Roots     []string
	Pattern   *pattern.Pattern
	Walker    *walker.Walker
	Scanner   *scanner.Scanner
	Scheduler *scheduler.Scheduler
	Printer   *printer.Printer
	Stop      *stop.Flag
}

// Configure compiles the pattern and builds every component for cfg.
// The StdinPath root reads from in. Output goes to out; colours and width
// follow cfg and, when out is a file, whether it is a terminal.
func Configure(cfg *config.Config, in io.Reader, out io.Writer, log logger.Logger, infoLog InfoLogger) (*Search, error) {
	if err := ValidateRoots(cfg.Paths); err != nil {
		return nil, err
	}

	p, err := pattern.Compile(cfg.Pattern, cfg.PatternOptions())
	if err != nil {
		return nil, &config.Error{Field: "pattern", Err: err}
	}
	log.Debug("Compiled pattern %q with %s engine", p.String(), cfg.Engine)

	flag := stop.New()
	walkOptions, err := ConfigureWalker(cfg, log, flag, infoLog)
	if err != nil {
		return nil, err
	}

	maxCount := cfg.MaxCount
	if cfg.FilesWithMatches && !cfg.JSON {
		maxCount = 1
	}
	scanOptions := []scanner.Option{
		scanner.WithLogger(log),
		scanner.WithMaxCount(maxCount),
		scanner.WithMmap(!cfg.NoMmap),
		scanner.WithStdin(in),
	}
	if cfg.HasContext() {
		scanOptions = append(scanOptions, scanner.WithContext(cfg.Before, cfg.After))
	}
	if cfg.MaxFileSize > 0 {
		scanOptions = append(scanOptions, scanner.WithMaxFileSize(int64(cfg.MaxFileSize)))
		infoLog("Skipping files larger than %s.", cfg.MaxFileSize)
	}
	sc := scanner.New(p, scanOptions...)

	sched := scheduler.New(sc,
		scheduler.WithLogger(log),
		scheduler.WithWorkers(cfg.Threads),
		scheduler.WithGrouped(cfg.Group),
		scheduler.WithStop(flag),
	)
	infoLog("Using %d workers.", cfg.Threads)

	return &Search{
		Roots:     cfg.Paths,
		Pattern:   p,
		Walker:    walker.New(walkOptions...),
		Scanner:   sc,
		Scheduler: sched,
		Printer:   ConfigurePrinter(cfg, out),
		Stop:      flag,
	}, nil
}

// ConfigurePrinter creates the printer for the output settings.
func ConfigurePrinter(cfg *config.Config, out io.Writer) *printer.Printer {
	mode := printer.ParseMode(cfg.OnlyMatching, cfg.Count, cfg.FilesWithMatches, cfg.JSON)

	useColors := false
	width := cfg.Width
	if f, ok := out.(*os.File); ok {
		useColors = cfg.UseColors(f)
		if width == 0 && useColors {
			width = printer.TerminalWidth(f)
		}
	} else {
		useColors = cfg.Color == config.ColorAlways
	}
	if mode == printer.ModeJSON {
		useColors = false
		width = 0
	}

	return printer.New().
		WithOutput(out).
		WithColors(useColors).
		WithMode(mode).
		WithFilename(!cfg.NoFilename).
		WithLineNumbers(!cfg.NoLineNumber).
		WithHeading(cfg.Heading).
		WithContextSeparator(cfg.HasContext()).
		WithWidth(width)
}

// Walk returns the scheduler walk over every root, in argument order.
func (s *Search) Walk() scheduler.WalkFunc {
	return func(ctx context.Context, emit func(walker.Entry) error) error {
		for _, root := range s.Roots {
			if err := s.Walker.Walk(ctx, root, emit); err != nil {
				return err
			}
		}
		return nil
	}
}
