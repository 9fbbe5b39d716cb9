// Package constraint provides a point-to-point distance constraint graph and
// the relaxation solvers that reposition objects to satisfy it.
//
// # Overview
//
// A [Constraint] pins two anchors on (usually) different objects to a target
// Euclidean distance. Anchors are logical points identified by an
// [AnchorRef] (object, anchor kind, index) and never carry a coordinate:
// resolving "top edge of object B" to a position is the caller's job.
//
// The [Graph] owns all constraints, keeps an adjacency index from object to
// the constraints touching it, and answers connectivity queries:
//
//	g := constraint.New()
//	g.AddConstraint(
//	    constraint.AnchorRef{Object: "a", Type: constraint.Center},
//	    constraint.AnchorRef{Object: "b", Type: constraint.Center},
//	    100,
//	)
//	comp := g.ConnectedComponent("a") // [a b]
//
// # Solving
//
// [Graph.Solve] and [Graph.SolveAnchored] run a Gauss–Seidel style
// relaxation: each pass walks every constraint in insertion order and nudges
// its endpoint objects along the connecting direction, using positions
// already updated earlier in the same pass. The input position map is never
// modified; the [Result] carries per-object deltas for the caller to apply.
//
//	res := g.Solve(positions, map[constraint.ObjectID]bool{"a": true}, constraint.SolveOptions{})
//	if !res.Converged {
//	    // apply res.Deltas anyway, but warn
//	}
//
// The solver is best-effort. Contradictory or heavily over-constrained systems
// simply end with Converged == false; that is a diagnostic, not an error.
//
// # Over-Constraint
//
// [Graph.OverConstrained] flags objects tied to more than two distinct
// neighbours. A free planar point has two translational degrees of freedom,
// so this is a necessary-but-not-sufficient heuristic: it misses, for
// example, redundant collinear constraints between exactly two neighbours.
//
// # Serialization
//
// [Graph.ToList] and [FromList] convert a graph to and from a flat list of
// [Record] values. Loading is all-or-nothing: an unknown anchor type or a
// missing field fails the whole call.
//
// # Concurrency
//
// Graph instances are not safe for concurrent mutation. The solvers only read
// the graph, so they may run on another goroutine as long as no one mutates
// the graph at the same time.
package constraint
