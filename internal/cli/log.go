package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tether/pkg/observability"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time rounded to the
// millisecond, e.g. "Rendered svg elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Logging Hooks
// =============================================================================

// LogHooks reports solver and cache events at debug level through the
// logger carried in the event context.
type LogHooks struct{}

var (
	_ observability.SolverHooks = LogHooks{}
	_ observability.CacheHooks  = LogHooks{}
)

func (LogHooks) OnSolveStart(ctx context.Context, constraints, objects int) {
	loggerFromContext(ctx).Debug("solve started", "constraints", constraints, "objects", objects)
}

func (LogHooks) OnSolveComplete(ctx context.Context, s observability.SolveStats, d time.Duration, err error) {
	l := loggerFromContext(ctx)
	if err != nil {
		l.Debug("solve failed", "error", err, "duration", d)
		return
	}
	l.Debug("solve finished",
		"converged", s.Converged,
		"iterations", s.Iterations,
		"max_error", s.MaxError,
		"over_constrained", s.OverConstrained,
		"duration", d)
}

func (LogHooks) OnRenderStart(ctx context.Context, format string) {
	loggerFromContext(ctx).Debug("render started", "format", format)
}

func (LogHooks) OnRenderComplete(ctx context.Context, format string, size int, d time.Duration, err error) {
	l := loggerFromContext(ctx)
	if err != nil {
		l.Debug("render failed", "format", format, "error", err)
		return
	}
	l.Debug("render finished", "format", format, "bytes", size, "duration", d)
}

func (LogHooks) OnCacheHit(ctx context.Context, keyType string) {
	loggerFromContext(ctx).Debug("cache hit", "type", keyType)
}

func (LogHooks) OnCacheMiss(ctx context.Context, keyType string) {
	loggerFromContext(ctx).Debug("cache miss", "type", keyType)
}

func (LogHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	loggerFromContext(ctx).Debug("cache store", "type", keyType, "bytes", size)
}
