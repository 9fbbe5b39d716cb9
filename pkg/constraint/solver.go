package constraint

import (
	"maps"
	"math"
	"slices"
)

const (
	// DefaultMaxIterations is the pass budget of [Graph.Solve].
	DefaultMaxIterations = 5

	// DefaultAnchoredMaxIterations is the pass budget of [Graph.SolveAnchored].
	// Off-center anchors converge slightly slower than reference points.
	DefaultAnchoredMaxIterations = 10

	// DefaultTolerance is the largest constraint error, in scene units,
	// that still counts as converged.
	DefaultTolerance = 1.0

	// deltaEpsilon is the movement below which an object is not reported.
	deltaEpsilon = 1e-6

	// coincidentEpsilon is the distance below which two anchors are treated
	// as the same point and the direction between them is undefined.
	coincidentEpsilon = 1e-9
)

// SolveOptions bounds a relaxation run. Zero or negative fields select the
// defaults of the solver variant being called.
type SolveOptions struct {
	MaxIterations int     `json:"max_iterations,omitempty" toml:"max_iterations"`
	Tolerance     float64 `json:"tolerance,omitempty" toml:"tolerance"`
}

func (o SolveOptions) withDefaults(maxIterations int) SolveOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = maxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// Result reports the outcome of one solve call. It is built fresh for every
// call and not retained by the graph.
type Result struct {
	// Converged is true when the last pass ended with MaxError within tolerance.
	Converged bool `json:"converged"`
	// Iterations is the number of passes actually run.
	Iterations int `json:"iterations_used"`
	// MaxError is the largest |target - distance| seen during the last pass.
	MaxError float64 `json:"max_error"`
	// Deltas holds the net movement of every unpinned object that moved.
	Deltas map[ObjectID]Point `json:"object_deltas"`
	// OverConstrained lists objects flagged by [Graph.OverConstrained],
	// computed once on the input positions.
	OverConstrained []ObjectID `json:"over_constrained_objects"`
}

// Moved returns the ids of objects with a delta, sorted.
func (r *Result) Moved() []ObjectID {
	return slices.Sorted(maps.Keys(r.Deltas))
}

// IsOverConstrained reports whether obj was flagged as over-constrained.
func (r *Result) IsOverConstrained(obj ObjectID) bool {
	_, found := slices.BinarySearch(r.OverConstrained, obj)
	return found
}

// Solve relaxes the object reference points toward satisfying every
// constraint, treating each anchor as coincident with its object position.
//
// positions maps object ids to their current positions and is not modified.
// Objects in pinned never move. Constraints whose endpoints are missing from
// positions are skipped, as the object may have been deleted since the
// snapshot was taken.
//
// Non-convergence is reported through Result.Converged, never as an error;
// callers should apply the partial result and warn.
func (g *Graph) Solve(positions map[ObjectID]Point, pinned map[ObjectID]bool, opts SolveOptions) *Result {
	opts = opts.withDefaults(DefaultMaxIterations)
	return g.relax(positions, pinned, opts, func(AnchorRef) Point { return Point{} })
}

// SolveAnchored is like [Graph.Solve] but measures each constraint between
// anchor points: object position plus the offset looked up in offsets. An
// anchor missing from offsets sits on its object's reference point.
// Corrections still translate the owning object as a whole, since anchors
// are rigid relative to it.
func (g *Graph) SolveAnchored(positions map[ObjectID]Point, offsets map[AnchorRef]Point, pinned map[ObjectID]bool, opts SolveOptions) *Result {
	opts = opts.withDefaults(DefaultAnchoredMaxIterations)
	return g.relax(positions, pinned, opts, func(a AnchorRef) Point { return offsets[a] })
}

// relax runs sequential Gauss-Seidel passes: every correction is written to
// the working copy immediately, so later constraints in the same pass see it.
func (g *Graph) relax(positions map[ObjectID]Point, pinned map[ObjectID]bool, opts SolveOptions, offset func(AnchorRef) Point) *Result {
	res := &Result{
		Deltas:          make(map[ObjectID]Point),
		OverConstrained: g.OverConstrained(positions),
	}

	work := maps.Clone(positions)
	constraints := g.Constraints()

	for pass := 1; pass <= opts.MaxIterations; pass++ {
		maxErr := 0.0
		for _, c := range constraints {
			pa, okA := work[c.A.Object]
			pb, okB := work[c.B.Object]
			if !okA || !okB {
				continue
			}

			d := pb.Add(offset(c.B)).Sub(pa.Add(offset(c.A)))
			dist := d.Len()
			e := math.Max(c.TargetDistance, 0) - dist
			maxErr = math.Max(maxErr, math.Abs(e))

			// Coincident anchors have no direction; push along +x.
			if dist < coincidentEpsilon {
				d, dist = Point{X: 1}, 1.0
			}
			dir := d.Scale(1 / dist)

			pinA, pinB := pinned[c.A.Object], pinned[c.B.Object]
			switch {
			case c.A.Object == c.B.Object:
				// Both anchors ride on the same object; translation cannot help.
			case pinA && pinB:
			case pinA:
				work[c.B.Object] = pb.Add(dir.Scale(e))
			case pinB:
				work[c.A.Object] = pa.Sub(dir.Scale(e))
			default:
				half := e / 2
				work[c.A.Object] = pa.Sub(dir.Scale(half))
				work[c.B.Object] = pb.Add(dir.Scale(half))
			}
		}

		res.Iterations = pass
		res.MaxError = maxErr
		if maxErr <= opts.Tolerance {
			break
		}
	}
	res.Converged = res.MaxError <= opts.Tolerance

	for obj, orig := range positions {
		if pinned[obj] {
			continue
		}
		delta := work[obj].Sub(orig)
		if math.Abs(delta.X) < deltaEpsilon && math.Abs(delta.Y) < deltaEpsilon {
			continue
		}
		res.Deltas[obj] = delta
	}
	return res
}
