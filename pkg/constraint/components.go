package constraint

import (
	"slices"
)

// translationalDOF is the number of translational degrees of freedom of a
// free point in the plane.
const translationalDOF = 2

// neighbours returns the distinct objects obj shares a constraint with,
// excluding obj itself.
func (g *Graph) neighbours(obj ObjectID) map[ObjectID]struct{} {
	out := make(map[ObjectID]struct{})
	for id := range g.adjacency[obj] {
		if other := g.constraints[id].Other(obj); other != obj {
			out[other] = struct{}{}
		}
	}
	return out
}

// ConnectedComponent returns every object transitively linked to obj by
// constraints, including obj itself, sorted. Constraints are treated as
// undirected edges. An object without constraints forms a component of one.
func (g *Graph) ConnectedComponent(obj ObjectID) []ObjectID {
	return sortedIDs(g.bfs(obj))
}

func (g *Graph) bfs(start ObjectID) map[ObjectID]struct{} {
	seen := map[ObjectID]struct{}{start: {}}
	queue := []ObjectID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range g.neighbours(cur) {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return seen
}

// ConnectedComponents partitions every constrained object into disjoint
// connected components. Each component is sorted, and components are
// ordered by their smallest object id.
func (g *Graph) ConnectedComponents() [][]ObjectID {
	visited := make(map[ObjectID]struct{}, len(g.adjacency))
	var comps [][]ObjectID
	for _, obj := range g.Objects() {
		if _, ok := visited[obj]; ok {
			continue
		}
		comp := g.bfs(obj)
		for id := range comp {
			visited[id] = struct{}{}
		}
		comps = append(comps, sortedIDs(comp))
	}
	return comps
}

// OverConstrained returns the objects constrained to more than two distinct
// neighbours, sorted. Duplicate constraints to the same neighbour count once.
//
// This is a heuristic, not a rank analysis: it is necessary but not
// sufficient for over-determination and misses cases such as redundant
// collinear constraints with exactly two neighbours. The positions
// argument is accepted so callers can pass the same map they solve with; it
// is not read.
func (g *Graph) OverConstrained(positions map[ObjectID]Point) []ObjectID {
	var flagged []ObjectID
	for obj := range g.adjacency {
		if len(g.neighbours(obj)) > translationalDOF {
			flagged = append(flagged, obj)
		}
	}
	slices.Sort(flagged)
	return flagged
}

func sortedIDs(set map[ObjectID]struct{}) []ObjectID {
	ids := make([]ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
