package io

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/tether/pkg/constraint"
	errs "github.com/matzehuels/tether/pkg/errors"
)

// Scene is the on-disk description of objects and the constraints between
// them.
type Scene struct {
	Objects     []Object            `json:"objects" toml:"objects"`
	Constraints []constraint.Record `json:"constraints" toml:"constraints"`
}

// Object is one scene object: its reference position, whether the solver
// may move it, and the offsets of its known anchors.
type Object struct {
	ID      string   `json:"id" toml:"id"`
	X       float64  `json:"x" toml:"x"`
	Y       float64  `json:"y" toml:"y"`
	Pinned  bool     `json:"pinned,omitempty" toml:"pinned,omitempty"`
	Anchors []Anchor `json:"anchors,omitempty" toml:"anchors,omitempty"`
}

// Anchor is an anchor offset relative to the owning object's position.
type Anchor struct {
	Type  string  `json:"type" toml:"type"`
	Index int     `json:"index,omitempty" toml:"index,omitempty"`
	DX    float64 `json:"dx" toml:"dx"`
	DY    float64 `json:"dy" toml:"dy"`
}

// Validate checks object ids, duplicate objects and anchor types. It does
// not check constraint records; [Scene.Graph] does that.
func (s *Scene) Validate() error {
	seen := make(map[string]struct{}, len(s.Objects))
	for i, o := range s.Objects {
		if err := errs.ValidateObjectID(o.ID); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "object %d", i)
		}
		if _, dup := seen[o.ID]; dup {
			return errs.New(errs.ErrCodeInvalidInput, "duplicate object id %q", o.ID)
		}
		seen[o.ID] = struct{}{}
		for _, a := range o.Anchors {
			if _, ok := constraint.ParseAnchorType(a.Type); !ok {
				return errs.New(errs.ErrCodeInvalidAnchorType, "object %q: unknown anchor type %q", o.ID, a.Type)
			}
		}
	}
	return nil
}

// Graph builds a constraint graph from the scene's records.
func (s *Scene) Graph() (*constraint.Graph, error) {
	return constraint.FromList(s.Constraints)
}

// Positions returns the object reference positions keyed by object id.
func (s *Scene) Positions() map[constraint.ObjectID]constraint.Point {
	out := make(map[constraint.ObjectID]constraint.Point, len(s.Objects))
	for _, o := range s.Objects {
		out[constraint.ObjectID(o.ID)] = constraint.Point{X: o.X, Y: o.Y}
	}
	return out
}

// Pinned returns the set of pinned objects.
func (s *Scene) Pinned() map[constraint.ObjectID]bool {
	out := make(map[constraint.ObjectID]bool)
	for _, o := range s.Objects {
		if o.Pinned {
			out[constraint.ObjectID(o.ID)] = true
		}
	}
	return out
}

// Offsets returns the anchor offset table for [constraint.Graph.SolveAnchored].
// Anchors with unknown types are skipped; call [Scene.Validate] first to
// reject them instead.
func (s *Scene) Offsets() map[constraint.AnchorRef]constraint.Point {
	out := make(map[constraint.AnchorRef]constraint.Point)
	for _, o := range s.Objects {
		for _, a := range o.Anchors {
			t, ok := constraint.ParseAnchorType(a.Type)
			if !ok {
				continue
			}
			ref := constraint.AnchorRef{Object: constraint.ObjectID(o.ID), Type: t, Index: a.Index}
			out[ref] = constraint.Point{X: a.DX, Y: a.DY}
		}
	}
	return out
}

// Apply returns a copy of the scene with deltas added to the matching
// object positions. Deltas for objects not in the scene are ignored.
func (s *Scene) Apply(deltas map[constraint.ObjectID]constraint.Point) *Scene {
	out := s.Clone()
	for i := range out.Objects {
		if d, ok := deltas[constraint.ObjectID(out.Objects[i].ID)]; ok {
			out.Objects[i].X += d.X
			out.Objects[i].Y += d.Y
		}
	}
	return out
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	out := &Scene{
		Objects:     make([]Object, len(s.Objects)),
		Constraints: slices.Clone(s.Constraints),
	}
	for i, o := range s.Objects {
		o.Anchors = slices.Clone(o.Anchors)
		out.Objects[i] = o
	}
	for i, r := range out.Constraints {
		if r.TargetDistance != nil {
			d := *r.TargetDistance
			out.Constraints[i].TargetDistance = &d
		}
		if r.Visible != nil {
			v := *r.Visible
			out.Constraints[i].Visible = &v
		}
	}
	return out
}

// SetConstraints replaces the scene's records with the graph's current list.
func (s *Scene) SetConstraints(g *constraint.Graph) {
	s.Constraints = g.ToList()
}

// SceneFromGraph builds a scene from a graph and the collaborator's state.
// Objects are listed in id order and include every object that has a
// position or takes part in a constraint. Objects without a position are
// placed at the origin.
func SceneFromGraph(
	g *constraint.Graph,
	positions map[constraint.ObjectID]constraint.Point,
	pinned map[constraint.ObjectID]bool,
	offsets map[constraint.AnchorRef]constraint.Point,
) *Scene {
	ids := make(map[constraint.ObjectID]struct{})
	for _, id := range g.Objects() {
		ids[id] = struct{}{}
	}
	for id := range positions {
		ids[id] = struct{}{}
	}

	anchors := make(map[constraint.ObjectID][]Anchor)
	for ref, off := range offsets {
		anchors[ref.Object] = append(anchors[ref.Object], Anchor{
			Type: ref.Type.String(), Index: ref.Index, DX: off.X, DY: off.Y,
		})
	}

	s := &Scene{Constraints: g.ToList()}
	for _, id := range slices.Sorted(maps.Keys(ids)) {
		p := positions[id]
		as := anchors[id]
		slices.SortFunc(as, func(a, b Anchor) int {
			if c := cmp.Compare(a.Type, b.Type); c != 0 {
				return c
			}
			return cmp.Compare(a.Index, b.Index)
		})
		s.Objects = append(s.Objects, Object{
			ID: string(id), X: p.X, Y: p.Y, Pinned: pinned[id], Anchors: as,
		})
	}
	return s
}
