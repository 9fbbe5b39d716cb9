// Package pkg provides the core libraries for tether, a distance-constraint
// solver for scene objects.
//
// # Overview
//
// tether keeps attachments at their target distances: a label stays 20
// units from the box it annotates, a connector keeps its endpoint on a node.
// The pkg directory is organized into these areas:
//
//  1. [constraint] - The constraint graph, component analysis and the solver
//  2. [io] - Scene files (objects, anchor offsets and constraints) in JSON or TOML
//  3. [pipeline] - Orchestration (load → solve → cache → render)
//  4. [cache] - Solve result caching with pluggable key strategies
//  5. [render] - Constraint diagrams via Graphviz ([render/dot]) and librsvg
//  6. [errors] - Structured error codes and input validation
//  7. [observability] - Hooks for solve, render and cache events
//
// # Architecture
//
// The typical data flow through tether:
//
//	Scene file (JSON/TOML)
//	         ↓
//	    [io] package (decode + validate)
//	         ↓
//	    [constraint] package (graph + Gauss-Seidel relaxation)
//	         ↓
//	    [io] package (apply deltas, write scene)
//	         ↓
//	    [render/dot] package (optional DOT/SVG/PNG/PDF diagram)
//
// # Quick Start
//
// Solve a graph directly:
//
//	import "github.com/matzehuels/tether/pkg/constraint"
//
//	g := constraint.New()
//	g.AddConstraint(
//	    constraint.AnchorRef{Object: "box", Type: constraint.EdgeRight},
//	    constraint.AnchorRef{Object: "label", Type: constraint.EdgeLeft},
//	    20,
//	)
//
//	positions := map[constraint.ObjectID]constraint.Point{
//	    "box":   {X: 0, Y: 0},
//	    "label": {X: 90, Y: 0},
//	}
//	res := g.Solve(positions, map[constraint.ObjectID]bool{"box": true}, constraint.SolveOptions{})
//	if !res.Converged {
//	    log.Printf("max error %.2f after %d passes", res.MaxError, res.Iterations)
//	}
//	for id, d := range res.Deltas {
//	    positions[id] = positions[id].Add(d)
//	}
//
// Or run the full pipeline with caching:
//
//	scene, err := io.Import("scene.json")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, scene, pipeline.Options{Anchored: true})
//	if err != nil {
//	    return err
//	}
//	return io.Export(res.Scene, "scene.solved.json")
//
// # Solving Model
//
// Each pass visits constraints in insertion order and moves unpinned
// endpoints along the line between their anchors until the anchors sit at
// the target distance. When both endpoints are free each takes half the
// correction. Corrections apply immediately (Gauss-Seidel), so a pass sees
// the effect of earlier constraints. The solver stops once the largest
// residual is within tolerance or the pass budget is spent; a scene that
// does not converge is still returned with Result.Converged set to false.
//
// [constraint]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/constraint
// [io]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/render
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/render/dot
// [errors]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tether/pkg/observability
package pkg
