// Package pipeline runs the load → solve → apply flow shared by the CLI
// commands.
//
// A [Runner] takes a scene, builds its constraint graph, merges any extra
// pins, and solves it with [constraint.Graph.Solve] or
// [constraint.Graph.SolveAnchored]. Results are cached by scene content and
// options, hooks in [observability] are fired, and the deltas are applied to
// a copy of the scene.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, scene, pipeline.Options{Anchored: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Solve.Converged {
//	    log.Warn("scene did not converge", "max_error", result.Solve.MaxError)
//	}
//	pkgio.Export(result.Scene, "solved.json")
//
// Rendering runs separately:
//
//	svg, err := runner.Render(ctx, result, pipeline.FormatSVG)
//
// [observability]: github.com/matzehuels/tether/pkg/observability
package pipeline

import (
	"time"

	"github.com/matzehuels/tether/pkg/cache"
	"github.com/matzehuels/tether/pkg/constraint"
	errs "github.com/matzehuels/tether/pkg/errors"
	pkgio "github.com/matzehuels/tether/pkg/io"
)

// Options configures one pipeline run. It supports JSON and TOML so the CLI
// config file can carry it.
type Options struct {
	// MaxIterations bounds the relaxation passes. Zero selects the default
	// of the chosen solver variant.
	MaxIterations int `json:"max_iterations,omitempty" toml:"max_iterations"`

	// Tolerance is the largest remaining error that counts as converged.
	// Zero selects [constraint.DefaultTolerance].
	Tolerance float64 `json:"tolerance,omitempty" toml:"tolerance"`

	// Anchored measures constraints between anchor points using the scene's
	// anchor offsets.
	Anchored bool `json:"anchored,omitempty" toml:"anchored"`

	// Pin lists extra objects to hold fixed on top of the scene's own pins.
	Pin []string `json:"pin,omitempty" toml:"pin"`

	// NoApply leaves the scene positions untouched; only the report is
	// produced.
	NoApply bool `json:"no_apply,omitempty" toml:"-"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Solve is the solver report.
	Solve *constraint.Result

	// Scene is a copy of the input with deltas applied, or an unchanged
	// copy when Options.NoApply is set.
	Scene *pkgio.Scene

	// Graph is the constraint graph built from the scene.
	Graph *constraint.Graph

	// Components are the connected components of the graph.
	Components [][]constraint.ObjectID

	// Cached reports whether Solve came from the cache.
	Cached bool

	// Duration is the wall time of the run.
	Duration time.Duration
}

// ValidateAndSetDefaults checks option ranges and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errs.ValidateIterations(o.MaxIterations); err != nil {
		return err
	}
	if err := errs.ValidateTolerance(o.Tolerance); err != nil {
		return err
	}
	for _, id := range o.Pin {
		if err := errs.ValidateObjectID(id); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidOptions, err, "pin")
		}
	}

	if o.MaxIterations == 0 {
		o.MaxIterations = constraint.DefaultMaxIterations
		if o.Anchored {
			o.MaxIterations = constraint.DefaultAnchoredMaxIterations
		}
	}
	if o.Tolerance == 0 {
		o.Tolerance = constraint.DefaultTolerance
	}
	o.validated = true
	return nil
}

// SolveOptions returns the solver bounds.
func (o *Options) SolveOptions() constraint.SolveOptions {
	return constraint.SolveOptions{MaxIterations: o.MaxIterations, Tolerance: o.Tolerance}
}

// SolveKeyOpts returns the cache key options for this run.
func (o *Options) SolveKeyOpts() cache.SolveKeyOpts {
	return cache.SolveKeyOpts{
		MaxIterations: o.MaxIterations,
		Tolerance:     o.Tolerance,
		Anchored:      o.Anchored,
		Pin:           o.Pin,
	}
}
