package constraint

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrStaleAdjacency is returned by [Graph.Validate] when the adjacency
	// index and the constraint store disagree. It indicates graph corruption.
	ErrStaleAdjacency = errors.New("adjacency index out of sync with constraints")
)

// Constraint pins two anchors to a target distance. Anchor order carries no
// meaning for solving but is preserved for serialization.
//
// Visible is a display hint for the caller and never affects solving.
type Constraint struct {
	ID             string
	A              AnchorRef
	B              AnchorRef
	TargetDistance float64
	Visible        bool
}

// Objects returns the endpoint objects, A first.
func (c *Constraint) Objects() (ObjectID, ObjectID) { return c.A.Object, c.B.Object }

// Touches reports whether either endpoint belongs to obj.
func (c *Constraint) Touches(obj ObjectID) bool { return c.A.Object == obj || c.B.Object == obj }

// Other returns the endpoint object opposite obj. For a constraint between
// two anchors of the same object it returns obj itself.
func (c *Constraint) Other(obj ObjectID) ObjectID {
	if c.A.Object == obj {
		return c.B.Object
	}
	return c.A.Object
}

// AddOption customizes [Graph.AddConstraint].
type AddOption func(*Constraint)

// WithID uses id instead of a freshly generated one. Load-from-file and
// undo/redo rely on this to recreate the exact same identifier.
func WithID(id string) AddOption {
	return func(c *Constraint) {
		if id != "" {
			c.ID = id
		}
	}
}

// WithVisible sets the display hint. Constraints are visible by default.
func WithVisible(visible bool) AddOption {
	return func(c *Constraint) { c.Visible = visible }
}

// Graph stores distance constraints and an adjacency index from each object
// to the ids of the constraints touching it.
//
// The zero value is not usable - use [New].
// Graph is not safe for concurrent mutation.
type Graph struct {
	constraints map[string]*Constraint
	order       []string                         // insertion order of ids
	adjacency   map[ObjectID]map[string]struct{} // object -> constraint ids
}

// New creates an empty constraint graph.
func New() *Graph {
	return &Graph{
		constraints: make(map[string]*Constraint),
		adjacency:   make(map[ObjectID]map[string]struct{}),
	}
}

// AddConstraint creates and stores a constraint between a and b.
//
// A fresh UUID is used as the id unless [WithID] supplies one. If a
// constraint with that id already exists it is replaced in place: it keeps
// its slot in the processing order, and the old endpoints' adjacency is
// cleaned up first. The target distance is stored as
// given: negative or zero values are accepted here and handled when solving.
func (g *Graph) AddConstraint(a, b AnchorRef, target float64, opts ...AddOption) *Constraint {
	c := &Constraint{
		A:              a,
		B:              b,
		TargetDistance: target,
		Visible:        true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if old, exists := g.constraints[c.ID]; exists {
		g.unlink(old.A.Object, c.ID)
		g.unlink(old.B.Object, c.ID)
	} else {
		g.order = append(g.order, c.ID)
	}

	g.constraints[c.ID] = c
	g.link(c.A.Object, c.ID)
	g.link(c.B.Object, c.ID)
	return c
}

// RemoveConstraint deletes the constraint with the given id.
// Removing an id that does not exist is a no-op.
func (g *Graph) RemoveConstraint(id string) {
	c, ok := g.constraints[id]
	if !ok {
		return
	}
	delete(g.constraints, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	g.unlink(c.A.Object, id)
	g.unlink(c.B.Object, id)
}

// RemoveObjectConstraints deletes every constraint touching obj, typically
// because obj was deleted from the scene. The removed ids are returned in
// insertion order so callers can drop visuals keyed by constraint id.
func (g *Graph) RemoveObjectConstraints(obj ObjectID) []string {
	if _, ok := g.adjacency[obj]; !ok {
		return nil
	}
	var removed []string
	for _, id := range g.order {
		if g.constraints[id].Touches(obj) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		g.RemoveConstraint(id)
	}
	return removed
}

// Clear removes every constraint.
func (g *Graph) Clear() {
	g.constraints = make(map[string]*Constraint)
	g.adjacency = make(map[ObjectID]map[string]struct{})
	g.order = nil
}

// Constraint returns the constraint with the given id and true, or nil and
// false if it does not exist. The returned pointer refers to the stored
// constraint; use the Set methods to edit it.
func (g *Graph) Constraint(id string) (*Constraint, bool) {
	c, ok := g.constraints[id]
	return c, ok
}

// SetTargetDistance edits the target distance of an existing constraint.
// It returns false, without panicking, when the id is unknown.
func (g *Graph) SetTargetDistance(id string, target float64) (*Constraint, bool) {
	c, ok := g.constraints[id]
	if !ok {
		return nil, false
	}
	c.TargetDistance = target
	return c, true
}

// SetVisible edits the display hint of an existing constraint.
// It returns false when the id is unknown.
func (g *Graph) SetVisible(id string, visible bool) (*Constraint, bool) {
	c, ok := g.constraints[id]
	if !ok {
		return nil, false
	}
	c.Visible = visible
	return c, true
}

// Constraints returns all constraints in insertion order. The slice is new;
// the pointers refer to the stored constraints.
func (g *Graph) Constraints() []*Constraint {
	out := make([]*Constraint, len(g.order))
	for i, id := range g.order {
		out[i] = g.constraints[id]
	}
	return out
}

// Len returns the number of constraints.
func (g *Graph) Len() int { return len(g.constraints) }

// ObjectConstraints returns the constraints touching obj in insertion order,
// or nil if the object has none.
func (g *Graph) ObjectConstraints(obj ObjectID) []*Constraint {
	ids, ok := g.adjacency[obj]
	if !ok {
		return nil
	}
	out := make([]*Constraint, 0, len(ids))
	for _, id := range g.order {
		if _, touches := ids[id]; touches {
			out = append(out, g.constraints[id])
		}
	}
	return out
}

// HasConstraints reports whether any constraint touches obj.
func (g *Graph) HasConstraints(obj ObjectID) bool {
	_, ok := g.adjacency[obj]
	return ok
}

// Objects returns every object with at least one constraint, sorted.
func (g *Graph) Objects() []ObjectID {
	objs := make([]ObjectID, 0, len(g.adjacency))
	for obj := range g.adjacency {
		objs = append(objs, obj)
	}
	slices.Sort(objs)
	return objs
}

// Validate checks that the adjacency index matches the constraint store in
// both directions: every constraint is indexed under both endpoint objects,
// and no index entry is empty or points at a missing constraint.
func (g *Graph) Validate() error {
	if len(g.order) != len(g.constraints) {
		return fmt.Errorf("%w: %d ordered ids for %d constraints", ErrStaleAdjacency, len(g.order), len(g.constraints))
	}
	for _, c := range g.constraints {
		for _, obj := range []ObjectID{c.A.Object, c.B.Object} {
			if _, ok := g.adjacency[obj][c.ID]; !ok {
				return fmt.Errorf("%w: constraint %s not indexed under %s", ErrStaleAdjacency, c.ID, obj)
			}
		}
	}
	for obj, ids := range g.adjacency {
		if len(ids) == 0 {
			return fmt.Errorf("%w: empty entry for %s", ErrStaleAdjacency, obj)
		}
		for id := range ids {
			c, ok := g.constraints[id]
			if !ok {
				return fmt.Errorf("%w: %s references missing constraint %s", ErrStaleAdjacency, obj, id)
			}
			if !c.Touches(obj) {
				return fmt.Errorf("%w: constraint %s does not touch %s", ErrStaleAdjacency, id, obj)
			}
		}
	}
	return nil
}

func (g *Graph) link(obj ObjectID, id string) {
	ids, ok := g.adjacency[obj]
	if !ok {
		ids = make(map[string]struct{})
		g.adjacency[obj] = ids
	}
	ids[id] = struct{}{}
}

func (g *Graph) unlink(obj ObjectID, id string) {
	ids, ok := g.adjacency[obj]
	if !ok {
		return
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(g.adjacency, obj)
	}
}
