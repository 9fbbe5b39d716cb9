package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/tether/pkg/cache"
	"github.com/matzehuels/tether/pkg/constraint"
	errs "github.com/matzehuels/tether/pkg/errors"
	pkgio "github.com/matzehuels/tether/pkg/io"
	"github.com/matzehuels/tether/pkg/observability"
)

const cacheKeyType = "solve"

var tracer = otel.Tracer("github.com/matzehuels/tether/pkg/pipeline")

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so multiple goroutines can share one
// Runner with different scenes and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer selects [cache.DefaultKeyer]; a nil cache disables caching;
// a nil logger uses the charmbracelet default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// Execute solves scene under opts. Non-convergence and over-constraint are
// reported in the result, not as errors.
func (r *Runner) Execute(ctx context.Context, scene *pkgio.Scene, opts Options) (*Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Execute",
		trace.WithAttributes(attribute.Bool("anchored", opts.Anchored)))
	defer span.End()

	start := time.Now()
	res, err := r.execute(ctx, scene, opts)
	if err != nil {
		observability.Solver().OnSolveComplete(ctx, observability.SolveStats{}, time.Since(start), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("constraints", res.Graph.Len()),
		attribute.Int("iterations", res.Solve.Iterations),
		attribute.Bool("converged", res.Solve.Converged),
		attribute.Bool("cached", res.Cached),
	)
	return res, nil
}

func (r *Runner) execute(ctx context.Context, scene *pkgio.Scene, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "scene is required")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	g, err := scene.Graph()
	if err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}
	positions := scene.Positions()
	pinned := scene.Pinned()
	for _, id := range opts.Pin {
		oid := constraint.ObjectID(id)
		if _, ok := positions[oid]; !ok {
			return nil, errs.New(errs.ErrCodeNotFound, "pinned object %q is not in the scene", id)
		}
		pinned[oid] = true
	}

	hooks := observability.Solver()
	hooks.OnSolveStart(ctx, g.Len(), len(positions))
	r.Logger.Debug("solving",
		"constraints", g.Len(),
		"objects", len(positions),
		"pinned", len(pinned),
		"anchored", opts.Anchored)

	key, keyErr := r.solveKey(scene, opts)
	solved, hit := r.lookup(ctx, key, keyErr == nil && !opts.Refresh)
	if !hit {
		if opts.Anchored {
			solved = g.SolveAnchored(positions, scene.Offsets(), pinned, opts.SolveOptions())
		} else {
			solved = g.Solve(positions, pinned, opts.SolveOptions())
		}
		if keyErr == nil {
			r.store(ctx, key, solved)
		}
	}

	result := &Result{
		Solve:      solved,
		Graph:      g,
		Components: g.ConnectedComponents(),
		Cached:     hit,
	}
	if opts.NoApply {
		result.Scene = scene.Clone()
	} else {
		result.Scene = scene.Apply(solved.Deltas)
	}
	result.Duration = time.Since(start)

	hooks.OnSolveComplete(ctx, observability.SolveStats{
		Converged:       solved.Converged,
		Iterations:      solved.Iterations,
		MaxError:        solved.MaxError,
		Moved:           len(solved.Deltas),
		OverConstrained: len(solved.OverConstrained),
		Cached:          hit,
	}, result.Duration, nil)

	r.Logger.Info("solved",
		"converged", solved.Converged,
		"iterations", solved.Iterations,
		"max_error", solved.MaxError,
		"moved", len(solved.Deltas),
		"cached", hit,
		"duration", result.Duration)

	return result, nil
}

func (r *Runner) solveKey(scene *pkgio.Scene, opts Options) (string, error) {
	data, err := json.Marshal(scene)
	if err != nil {
		return "", err
	}
	return r.Keyer.SolveKey(cache.Hash(data), opts.SolveKeyOpts()), nil
}

func (r *Runner) lookup(ctx context.Context, key string, enabled bool) (*constraint.Result, bool) {
	if !enabled {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	var res constraint.Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	if res.Deltas == nil {
		res.Deltas = make(map[constraint.ObjectID]constraint.Point)
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *constraint.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Debug("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
